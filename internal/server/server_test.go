package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pathweaver/internal/engine"
	"pathweaver/internal/model"
	"pathweaver/internal/pathway"
)

type stubIndex struct{}

func (stubIndex) Search(_ context.Context, _ string, q model.StructuredQuery, _ float64, _ int) ([]model.CatalogCourse, error) {
	if q.SubjectCode != "ICS" {
		return nil, nil
	}
	return []model.CatalogCourse{{
		CourseID:     "ics111",
		SubjectCode:  "ICS",
		CourseNumber: 111,
		Title:        "Introduction to Computer Science I",
		Credits:      model.CreditRange{Min: 4, Max: 4},
	}}, nil
}

type stubStore struct {
	templates []model.PathwayTemplate
}

func (s *stubStore) FindSimilar(_ context.Context, _ string, limit int) ([]model.PathwayTemplate, error) {
	if limit > 0 && len(s.templates) > limit {
		return s.templates[:limit], nil
	}
	return s.templates, nil
}

func (s *stubStore) GetByID(_ context.Context, id string) (model.PathwayTemplate, error) {
	for _, tpl := range s.templates {
		if tpl.PathwayID == id {
			return tpl, nil
		}
	}
	return model.PathwayTemplate{}, fmt.Errorf("pathway %q: %w", id, pathway.ErrNotFound)
}

type stubTranslator struct{}

func (stubTranslator) Translate(_ context.Context, names []string) ([]model.StructuredQuery, error) {
	out := make([]model.StructuredQuery, len(names))
	for i, name := range names {
		if strings.HasPrefix(name, "ICS") {
			out[i] = model.StructuredQuery{SubjectCode: "ICS", CourseNumber: 111}
		}
	}
	return out, nil
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(context.Context, []string, string) (string, error) {
	return "looks good", nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := &stubStore{templates: []model.PathwayTemplate{{
		PathwayID:   "bs-ics",
		ProgramName: "BS Computer Science",
		Years: []model.YearPlan{{
			YearNumber: 1,
			Semesters: []model.SemesterPlan{{
				SemesterName: model.SemesterFall,
				Courses: []model.RequirementSlot{
					{Name: "ICS 111", Credits: 4},
					{Name: "ART 999", Credits: 3},
				},
			}},
		}},
	}}}
	eng := engine.New(stubIndex{}, store, stubTranslator{}, stubSummarizer{}, zap.NewNop(), engine.Options{})

	srv := httptest.NewServer(NewMux(eng, store, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func TestPredictEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/predict", predictRequest{Query: "computer science"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var completed model.CompletedPathway
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&completed))
	assert.Equal(t, "BS Computer Science", completed.ProgramName)
	assert.Equal(t, "looks good", completed.Summary)

	require.Len(t, completed.Years, 1)
	courses := completed.Years[0].Semesters[0].Courses
	require.Len(t, courses, 2)
	assert.Equal(t, "ics111", courses[0].CourseID)
	assert.True(t, courses[1].IsPlaceholder())
}

func TestPredictRequiresQuery(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/predict", predictRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictRejectsGarbageBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/predict", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPredictByIDEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/predict/bs-ics", predictRequest{Query: "computing"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var completed model.CompletedPathway
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&completed))
	assert.Equal(t, "bs-ics", completed.PathwayID)
}

func TestPredictByIDNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/predict/nope", predictRequest{Query: "computing"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "pathway not found", body.Error)
}

func TestGetPathwayEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/pathways/bs-ics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tpl model.PathwayTemplate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tpl))
	assert.Equal(t, "BS Computer Science", tpl.ProgramName)

	missing, err := http.Get(srv.URL + "/pathways/nope")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestFindSimilarEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/pathways/similar?query=computing&limit=5")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var templates []model.PathwayTemplate
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&templates))
	require.Len(t, templates, 1)

	noQuery, err := http.Get(srv.URL + "/pathways/similar")
	require.NoError(t, err)
	defer noQuery.Body.Close()
	assert.Equal(t, http.StatusBadRequest, noQuery.StatusCode)

	badLimit, err := http.Get(srv.URL + "/pathways/similar?query=x&limit=zero")
	require.NoError(t, err)
	defer badLimit.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badLimit.StatusCode)
}

func TestExportEndpoint(t *testing.T) {
	srv := newTestServer(t)
	plan := model.CompletedPathway{PathwayID: "p1", ProgramName: "BS Test"}

	csvResp := postJSON(t, srv.URL+"/export", plan)
	defer csvResp.Body.Close()
	require.Equal(t, http.StatusOK, csvResp.StatusCode)
	assert.Equal(t, "text/csv", csvResp.Header.Get("Content-Type"))

	xmlResp := postJSON(t, srv.URL+"/export?format=xml", plan)
	defer xmlResp.Body.Close()
	require.Equal(t, http.StatusOK, xmlResp.StatusCode)
	assert.Equal(t, "application/xml", xmlResp.Header.Get("Content-Type"))

	bad := postJSON(t, srv.URL+"/export?format=pdf", plan)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/predict")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
