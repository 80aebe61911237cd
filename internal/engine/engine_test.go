package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"pathweaver/internal/model"
	"pathweaver/internal/pathway"
	"pathweaver/internal/translate"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// FAKE COLLABORATORS
// =============================================================================

// fakeIndex routes searches through fn and counts calls. fn receives the
// structured query and credit value, which is how requirements are told
// apart (the relevance text is the same global query for every slot).
type fakeIndex struct {
	mu    sync.Mutex
	calls []model.StructuredQuery
	fn    func(q model.StructuredQuery, credits float64) ([]model.CatalogCourse, error)
}

func (f *fakeIndex) Search(_ context.Context, _ string, q model.StructuredQuery, credits float64, _ int) ([]model.CatalogCourse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	if f.fn == nil {
		return nil, nil
	}
	return f.fn(q, credits)
}

func (f *fakeIndex) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeStore struct {
	templates []model.PathwayTemplate
}

func (f *fakeStore) FindSimilar(_ context.Context, _ string, limit int) ([]model.PathwayTemplate, error) {
	if limit > 0 && len(f.templates) > limit {
		return f.templates[:limit], nil
	}
	return f.templates, nil
}

func (f *fakeStore) GetByID(_ context.Context, id string) (model.PathwayTemplate, error) {
	for _, tpl := range f.templates {
		if tpl.PathwayID == id {
			return tpl, nil
		}
	}
	return model.PathwayTemplate{}, fmt.Errorf("pathway %q: %w", id, pathway.ErrNotFound)
}

type fakeTranslator struct {
	queries []model.StructuredQuery
	err     error
	calls   int
}

func (f *fakeTranslator) Translate(_ context.Context, names []string) ([]model.StructuredQuery, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.queries != nil {
		return f.queries, nil
	}
	return translate.NewRuleTranslator().Translate(context.Background(), names)
}

type fakeSummarizer struct {
	summary string
	err     error
	descs   []string
	query   string
}

func (f *fakeSummarizer) Summarize(_ context.Context, descs []string, query string) (string, error) {
	f.descs = descs
	f.query = query
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

// =============================================================================
// FIXTURES
// =============================================================================

func icsCourse(id string, number int, credits float64) model.CatalogCourse {
	return model.CatalogCourse{
		CourseID:     id,
		SubjectCode:  "ICS",
		CourseNumber: number,
		Title:        fmt.Sprintf("ICS %d", number),
		Description:  "computing",
		Credits:      model.CreditRange{Min: credits, Max: credits},
	}
}

// scenarioTemplate is the 1-year, 2-semester example: "ICS 111" with a
// catalog match and "ART 999" without one.
func scenarioTemplate() model.PathwayTemplate {
	return model.PathwayTemplate{
		PathwayID:    "bs-ics",
		ProgramName:  "BS Computer Science",
		Institution:  "Manoa",
		TotalCredits: 120,
		Years: []model.YearPlan{{
			YearNumber: 1,
			Semesters: []model.SemesterPlan{
				{
					SemesterName: model.SemesterFall,
					Credits:      4,
					Courses:      []model.RequirementSlot{{Name: "ICS 111", Credits: 4}},
				},
				{
					SemesterName: model.SemesterSpring,
					Credits:      3,
					Courses:      []model.RequirementSlot{{Name: "ART 999", Credits: 3}},
				},
			},
		}},
	}
}

func newTestEngine(index *fakeIndex, store *fakeStore, tr translate.Translator, sum *fakeSummarizer, opts Options) *Engine {
	if tr == nil {
		tr = &fakeTranslator{}
	}
	if sum == nil {
		sum = &fakeSummarizer{}
	}
	return New(index, store, tr, sum, zap.NewNop(), opts)
}

// =============================================================================
// TESTS
// =============================================================================

func TestPredictExampleScenario(t *testing.T) {
	hits := []model.CatalogCourse{icsCourse("ics111", 111, 4), icsCourse("ics101", 101, 4)}
	index := &fakeIndex{fn: func(q model.StructuredQuery, credits float64) ([]model.CatalogCourse, error) {
		if q.SubjectCode == "ICS" {
			assert.Equal(t, 4.0, credits)
			return hits, nil
		}
		return nil, nil // no catalog match for ART 999
	}}
	store := &fakeStore{templates: []model.PathwayTemplate{scenarioTemplate()}}
	sum := &fakeSummarizer{summary: "A solid computing start."}

	engine := newTestEngine(index, store, nil, sum, Options{})
	completed, err := engine.Predict(context.Background(), "I want to study computer science")
	require.NoError(t, err)

	require.Len(t, completed.Years, 1)
	require.Len(t, completed.Years[0].Semesters, 2)
	assert.Equal(t, 120.0, completed.TotalCredits)
	assert.Equal(t, []string{"BS Computer Science"}, completed.Candidates)
	assert.Equal(t, "A solid computing start.", completed.Summary)

	fall := completed.Years[0].Semesters[0]
	require.Len(t, fall.Courses, 1)
	assert.Equal(t, "ics111", fall.Courses[0].CourseID)
	assert.Equal(t, hits, fall.Courses[0].Candidates)

	spring := completed.Years[0].Semesters[1]
	require.Len(t, spring.Courses, 1)
	placeholder := spring.Courses[0]
	assert.True(t, placeholder.IsPlaceholder())
	assert.Equal(t, "ART 999 (no match found)", placeholder.Title)
	assert.Equal(t, model.CreditRange{Min: 3, Max: 3}, placeholder.Credits)
	assert.Empty(t, placeholder.Candidates)

	// Placeholders stay out of the summarizer input by default.
	require.Len(t, sum.descs, 1)
	assert.Contains(t, sum.descs[0], "ICS 111")
	assert.Equal(t, "I want to study computer science", sum.query)
}

// wideTemplate spreads n numbered requirements over two years.
func wideTemplate(n int) model.PathwayTemplate {
	tpl := model.PathwayTemplate{
		PathwayID:   "wide",
		ProgramName: "Wide Program",
		Years: []model.YearPlan{
			{YearNumber: 1, Semesters: []model.SemesterPlan{{SemesterName: model.SemesterFall}}},
			{YearNumber: 2, Semesters: []model.SemesterPlan{{SemesterName: model.SemesterSpring}}},
		},
	}
	for i := 0; i < n; i++ {
		slot := model.RequirementSlot{Name: fmt.Sprintf("ICS %d", 100+i), Credits: 3}
		if i%2 == 0 {
			tpl.Years[0].Semesters[0].Courses = append(tpl.Years[0].Semesters[0].Courses, slot)
		} else {
			tpl.Years[1].Semesters[0].Courses = append(tpl.Years[1].Semesters[0].Courses, slot)
		}
	}
	return tpl
}

func flattenCompleted(c model.CompletedPathway) []model.ResolvedCourse {
	var out []model.ResolvedCourse
	for _, y := range c.Years {
		for _, s := range y.Semesters {
			out = append(out, s.Courses...)
		}
	}
	return out
}

func TestOrderPreservedUnderLatencyVariance(t *testing.T) {
	const n = 12
	tpl := wideTemplate(n)

	// Later requirements finish first: completion order is the reverse of
	// input order.
	index := &fakeIndex{fn: func(q model.StructuredQuery, _ float64) ([]model.CatalogCourse, error) {
		delay := time.Duration(n-(q.CourseNumber-100)) * time.Millisecond
		time.Sleep(delay)
		return []model.CatalogCourse{icsCourse(fmt.Sprintf("c%d", q.CourseNumber), q.CourseNumber, 3)}, nil
	}}
	store := &fakeStore{templates: []model.PathwayTemplate{tpl}}

	engine := newTestEngine(index, store, nil, nil, Options{FanOut: 4})
	completed, err := engine.Predict(context.Background(), "computing")
	require.NoError(t, err)

	resolved := flattenCompleted(completed)
	require.Len(t, resolved, n) // cardinality preserved

	want := Flatten(tpl)
	for i, course := range resolved {
		wantNumber := 0
		fmt.Sscanf(want[i].Slot.Name, "ICS %d", &wantNumber)
		assert.Equal(t, fmt.Sprintf("c%d", wantNumber), course.CourseID,
			"slot %d resolved out of order", i)
	}
}

func TestPartialSearchFailureIsolation(t *testing.T) {
	tpl := wideTemplate(6)
	index := &fakeIndex{fn: func(q model.StructuredQuery, _ float64) ([]model.CatalogCourse, error) {
		if q.CourseNumber == 103 {
			return nil, errors.New("index shard unavailable")
		}
		return []model.CatalogCourse{icsCourse(fmt.Sprintf("c%d", q.CourseNumber), q.CourseNumber, 3)}, nil
	}}
	store := &fakeStore{templates: []model.PathwayTemplate{tpl}}

	engine := newTestEngine(index, store, nil, nil, Options{})
	completed, err := engine.Predict(context.Background(), "computing")
	require.NoError(t, err)

	resolved := flattenCompleted(completed)
	require.Len(t, resolved, 6)

	want := Flatten(tpl)
	for i, course := range resolved {
		if want[i].Slot.Name == "ICS 103" {
			assert.True(t, course.IsPlaceholder(), "failed slot must resolve to a placeholder")
			assert.Equal(t, "ICS 103 (no match found)", course.Title)
		} else {
			assert.False(t, course.IsPlaceholder(), "slot %d affected by sibling failure", i)
		}
	}
}

func TestPredictByIDNotFound(t *testing.T) {
	index := &fakeIndex{}
	translator := &fakeTranslator{}
	store := &fakeStore{templates: []model.PathwayTemplate{scenarioTemplate()}}

	engine := newTestEngine(index, store, translator, nil, Options{})
	_, err := engine.PredictByID(context.Background(), "missing-id", "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pathway.ErrNotFound))

	// No search or translation work happens for an unknown id.
	assert.Zero(t, index.callCount())
	assert.Zero(t, translator.calls)
}

func TestPredictByIDCandidateOrdering(t *testing.T) {
	requested := scenarioTemplate() // id bs-ics
	other := scenarioTemplate()
	other.PathwayID = "ba-art"
	other.ProgramName = "BA Art History"

	// Similarity ranks the other program above the requested one; the
	// requested template must still lead the candidate list, without a
	// duplicate for itself.
	store := &fakeStore{templates: []model.PathwayTemplate{other, requested}}
	index := &fakeIndex{fn: func(model.StructuredQuery, float64) ([]model.CatalogCourse, error) {
		return []model.CatalogCourse{icsCourse("x", 111, 4)}, nil
	}}

	engine := newTestEngine(index, store, nil, nil, Options{})
	completed, err := engine.PredictByID(context.Background(), "bs-ics", "art or computing")
	require.NoError(t, err)

	assert.Equal(t, []string{"BS Computer Science", "BA Art History"}, completed.Candidates)
	assert.Equal(t, "bs-ics", completed.PathwayID)
}

func TestTranslatorCountMismatch(t *testing.T) {
	tpl := wideTemplate(5)

	// Three queries for five requirements: the tail proceeds unfiltered.
	translator := &fakeTranslator{queries: []model.StructuredQuery{
		{SubjectCode: "ICS", CourseNumber: 100},
		{SubjectCode: "ICS", CourseNumber: 102},
		{SubjectCode: "ICS", CourseNumber: 104},
	}}
	index := &fakeIndex{}
	store := &fakeStore{templates: []model.PathwayTemplate{tpl}}

	engine := newTestEngine(index, store, translator, nil, Options{FanOut: 1})
	completed, err := engine.Predict(context.Background(), "computing")
	require.NoError(t, err)
	require.Len(t, flattenCompleted(completed), 5)

	require.Len(t, index.calls, 5)
	zeroQueries := 0
	for _, q := range index.calls {
		if q.IsZero() {
			zeroQueries++
		}
	}
	assert.Equal(t, 2, zeroQueries, "padded requirements must search without filters")
}

func TestTranslatorHardFailureDegrades(t *testing.T) {
	tpl := wideTemplate(3)
	translator := &fakeTranslator{err: errors.New("model unavailable")}
	index := &fakeIndex{}
	store := &fakeStore{templates: []model.PathwayTemplate{tpl}}

	engine := newTestEngine(index, store, translator, nil, Options{})
	completed, err := engine.Predict(context.Background(), "computing")
	require.NoError(t, err)
	require.Len(t, flattenCompleted(completed), 3)

	for _, q := range index.calls {
		assert.True(t, q.IsZero())
	}
}

func TestPredictMalformedTemplate(t *testing.T) {
	tpl := scenarioTemplate()
	tpl.Years[0].Semesters[0].Courses[0].Credits = -4

	index := &fakeIndex{}
	store := &fakeStore{templates: []model.PathwayTemplate{tpl}}

	engine := newTestEngine(index, store, nil, nil, Options{})
	_, err := engine.Predict(context.Background(), "computing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedTemplate))
	assert.Zero(t, index.callCount())
}

func TestPredictNoPathways(t *testing.T) {
	engine := newTestEngine(&fakeIndex{}, &fakeStore{}, nil, nil, Options{})
	_, err := engine.Predict(context.Background(), "anything")
	assert.True(t, errors.Is(err, ErrNoPathways))
}

func TestSummarizerFailureDegrades(t *testing.T) {
	index := &fakeIndex{fn: func(q model.StructuredQuery, _ float64) ([]model.CatalogCourse, error) {
		return []model.CatalogCourse{icsCourse("ics111", 111, 4)}, nil
	}}
	store := &fakeStore{templates: []model.PathwayTemplate{scenarioTemplate()}}
	sum := &fakeSummarizer{err: errors.New("llm timeout")}

	engine := newTestEngine(index, store, nil, sum, Options{})
	completed, err := engine.Predict(context.Background(), "computing")
	require.NoError(t, err)
	assert.Empty(t, completed.Summary)
	require.Len(t, flattenCompleted(completed), 2)
}

func TestEmptyTemplateCompletes(t *testing.T) {
	tpl := model.PathwayTemplate{PathwayID: "empty", ProgramName: "Empty Program"}
	store := &fakeStore{templates: []model.PathwayTemplate{tpl}}

	engine := newTestEngine(&fakeIndex{}, store, nil, nil, Options{})
	completed, err := engine.Predict(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, completed.Years)
	assert.Empty(t, flattenCompleted(completed))
}
