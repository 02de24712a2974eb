package rera

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisory-portal/internal/models"
)

const sampleDetailPage = `
<html><body>
<table class="project-details">
  <tr><td>Project Name:</td><td>Green Meadows Phase II</td></tr>
  <tr><td>Promoter Name:</td><td>Sunrise Developers Pvt Ltd</td></tr>
  <tr><td>District:</td><td>Pune</td></tr>
  <tr><td>State:</td><td>Maharashtra</td></tr>
  <tr><td>Project Status:</td><td>Under Construction</td></tr>
  <tr><td>Compliance Status:</td><td>Active</td></tr>
  <tr><td>Registration Date:</td><td>15-06-2022</td></tr>
  <tr><td>Expiry Date:</td><td>31/12/2026</td></tr>
</table>
</body></html>`

func docFromString(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseProjectDoc(t *testing.T) {
	project := parseProjectDoc(docFromString(t, sampleDetailPage), "P52100012345")
	require.NotNil(t, project)

	assert.Equal(t, "P52100012345", project.ReraID)
	assert.Equal(t, "Green Meadows Phase II", project.ProjectName)
	assert.Equal(t, "Sunrise Developers Pvt Ltd", project.PromoterName)
	assert.Equal(t, "Pune", project.District)
	assert.Equal(t, "Maharashtra", project.State)
	assert.Equal(t, models.ProjectUnderConstruction, project.ProjectStatus)
	assert.Equal(t, models.ComplianceActive, project.ComplianceStatus)

	require.NotNil(t, project.RegistrationDate)
	assert.Equal(t, "2022-06-15", project.RegistrationDate.Format("2006-01-02"))
	require.NotNil(t, project.ExpiryDate)
	assert.Equal(t, "2026-12-31", project.ExpiryDate.Format("2006-01-02"))
}

func TestParseProjectDocAlternateLabels(t *testing.T) {
	// Some state portals use different wording for the same fields
	html := `
<table id="projectDetail">
  <tr><td>Name of Project</td><td>Lakeview Residency</td></tr>
  <tr><td>Name of Promoter</td><td>Blue Hills Infra</td></tr>
  <tr><td>Status of Project</td><td>Completed</td></tr>
  <tr><td>Registration Status</td><td>Valid</td></tr>
  <tr><td>Valid Upto</td><td>2027-03-31</td></tr>
</table>`

	project := parseProjectDoc(docFromString(t, html), "K-RERA-0042")
	require.NotNil(t, project)

	assert.Equal(t, "Lakeview Residency", project.ProjectName)
	assert.Equal(t, "Blue Hills Infra", project.PromoterName)
	assert.Equal(t, models.ProjectCompleted, project.ProjectStatus)
	assert.Equal(t, models.ComplianceActive, project.ComplianceStatus)
	require.NotNil(t, project.ExpiryDate)
	assert.Equal(t, "2027-03-31", project.ExpiryDate.Format("2006-01-02"))
}

func TestParseProjectDocNoDetailTable(t *testing.T) {
	html := `<html><body><div id="app">Loading...</div></body></html>`
	assert.Nil(t, parseProjectDoc(docFromString(t, html), "X"))
}

func TestMapProjectStatus(t *testing.T) {
	cases := map[string]models.ProjectStatus{
		"Under Construction": models.ProjectUnderConstruction,
		"ongoing":            models.ProjectUnderConstruction,
		"New Project":        models.ProjectUnderConstruction,
		"Completed":          models.ProjectCompleted,
		"Delayed":            models.ProjectDelayed,
		"lapsed":             models.ProjectDelayed,
		"Cancelled":          models.ProjectCancelled,
		"Revoked":            models.ProjectCancelled,
		"Registered":         models.ProjectApproved,
		"something else":     "",
	}
	for input, want := range cases {
		assert.Equal(t, want, mapProjectStatus(input), "input %q", input)
	}
}

func TestMapComplianceStatus(t *testing.T) {
	cases := map[string]models.ComplianceStatus{
		"Active":        models.ComplianceActive,
		"valid":         models.ComplianceActive,
		"Non-Compliant": models.ComplianceNonCompliant,
		"non compliant": models.ComplianceNonCompliant,
		"Defaulter":     models.ComplianceNonCompliant,
		"Suspended":     models.ComplianceSuspended,
		"Revoked":       models.ComplianceCancelled,
		"unknown":       "",
	}
	for input, want := range cases {
		assert.Equal(t, want, mapComplianceStatus(input), "input %q", input)
	}
}

func TestParseRegistryDate(t *testing.T) {
	for _, input := range []string{"15-06-2022", "15/06/2022", "2022-06-15", "15 Jun 2022"} {
		d := parseRegistryDate(input)
		require.NotNil(t, d, "input %q", input)
		assert.Equal(t, "2022-06-15", d.Format("2006-01-02"), "input %q", input)
	}

	assert.Nil(t, parseRegistryDate(""))
	assert.Nil(t, parseRegistryDate("not a date"))
}

func TestFetchProjectSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/project/P52100012345", r.URL.Path)
		w.Write([]byte(sampleDetailPage))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 1, RetryDelay: time.Millisecond})

	project, err := client.FetchProject(context.Background(), "P52100012345")
	require.NoError(t, err)
	assert.Equal(t, "Green Meadows Phase II", project.ProjectName)
}

func TestFetchProjectNotRegistered(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 3, RetryDelay: time.Millisecond})

	_, err := client.FetchProject(context.Background(), "NOPE")
	require.ErrorIs(t, err, ErrNotRegistered)
	// A 404 is definitive, no retries
	assert.Equal(t, 1, requests)
}

func TestFetchProjectRetriesOnServerError(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleDetailPage))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 3, RetryDelay: time.Millisecond})

	project, err := client.FetchProject(context.Background(), "P52100012345")
	require.NoError(t, err)
	assert.Equal(t, 3, requests)
	assert.Equal(t, "Green Meadows Phase II", project.ProjectName)
}

func TestFetchProjectStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, MaxRetries: 1, RetryDelay: time.Millisecond})

	_, err := client.FetchProject(context.Background(), "THROTTLED")
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
}
