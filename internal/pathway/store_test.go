package pathway

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pathweaver/internal/model"
)

type stubEngine struct{}

func (stubEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := []float32{0.01, 0.01}
	lower := strings.ToLower(text)
	if strings.Contains(lower, "computer") {
		vec[0] = 1
	}
	if strings.Contains(lower, "art") {
		vec[1] = 1
	}
	return vec, nil
}

func (s stubEngine) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = s.Embed(ctx, t)
	}
	return out, nil
}

func (stubEngine) Dimensions() int { return 2 }
func (stubEngine) Name() string    { return "stub" }

func template(id, program string) model.PathwayTemplate {
	return model.PathwayTemplate{
		PathwayID:    id,
		ProgramName:  program,
		Institution:  "Manoa",
		TotalCredits: 120,
		Years: []model.YearPlan{{
			YearNumber: 1,
			Semesters: []model.SemesterPlan{{
				SemesterName: model.SemesterFall,
				Credits:      15,
				Courses:      []model.RequirementSlot{{Name: "ICS 111", Credits: 4}},
			}},
		}},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", stubEngine{}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGetByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, []model.PathwayTemplate{template("bs-cs", "BS Computer Science")}))

	tpl, err := s.GetByID(ctx, "bs-cs")
	require.NoError(t, err)
	assert.Equal(t, "BS Computer Science", tpl.ProgramName)
	require.Len(t, tpl.Years, 1)
	assert.Equal(t, "ICS 111", tpl.Years[0].Semesters[0].Courses[0].Name)
}

func TestGetByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetByID(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFindSimilarRanking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Add(ctx, []model.PathwayTemplate{
		template("bs-cs", "BS Computer Science"),
		template("ba-art", "BA Art History"),
	}))

	got, err := s.FindSimilar(ctx, "I want to study computer science", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bs-cs", got[0].PathwayID)

	got, err = s.FindSimilar(ctx, "art and painting", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ba-art", got[0].PathwayID)
}

func TestAddRejectsMalformedTemplate(t *testing.T) {
	s := newTestStore(t)

	bad := template("bad", "Broken Program")
	bad.Years[0].Semesters[0].Courses[0].Credits = -1

	err := s.Add(context.Background(), []model.PathwayTemplate{bad})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedTemplate))
}

func TestAddAssignsIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tpl := template("", "BS Computer Science")
	require.NoError(t, s.Add(ctx, []model.PathwayTemplate{tpl}))

	got, err := s.FindSimilar(ctx, "computer science", 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].PathwayID)
}
