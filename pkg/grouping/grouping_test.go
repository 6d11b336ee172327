package grouping

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lirany1/html-screenshot-reporter/pkg/models"
)

func TestFeatureName(t *testing.T) {
	tests := []struct {
		name     string
		testName string
		expected string
		wantErr  bool
	}{
		{
			name:     "well formed",
			testName: "Feature: Login - Scenario: Valid user",
			expected: "Login",
		},
		{
			name:     "feature containing dashes",
			testName: "Feature: Sign-up - flow - Scenario: Email",
			expected: "Sign-up - flow",
		},
		{
			name:     "empty feature",
			testName: "Feature:  - Scenario: Orphan",
			expected: "",
		},
		{
			name:     "missing feature marker",
			testName: "Login - Scenario: Valid user",
			wantErr:  true,
		},
		{
			name:     "missing scenario marker",
			testName: "Feature: Login Valid user",
			wantErr:  true,
		},
		{
			name:     "markers out of order",
			testName: " - Scenario: x Feature: Login",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FeatureName(tt.testName)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedTestName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func rec(testName, browser string, status models.Status) *models.FlatRecord {
	return &models.FlatRecord{TestName: testName, Browser: browser, Status: status}
}

func TestGroup_Order(t *testing.T) {
	records := []*models.FlatRecord{
		rec("Feature: Search - Scenario: By name", "safari", models.StatusPass),
		rec("Feature: Login - Scenario: Valid user", "chrome", models.StatusPass),
		rec("Feature: Search - Scenario: By tag", "chrome", models.StatusFail),
		rec("Feature: Search - Scenario: By name", "chrome", models.StatusPass),
		rec("Feature: Login - Scenario: Locked out", "firefox", models.StatusSkipped),
	}

	g, err := Group(records, []string{"chrome", "firefox", "safari"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Search", "Login"}, g.Features())
	assert.Equal(t, []string{
		"Feature: Search - Scenario: By name",
		"Feature: Search - Scenario: By tag",
	}, g.Scenarios("Search"))
	assert.Equal(t, []string{
		"Feature: Login - Scenario: Valid user",
		"Feature: Login - Scenario: Locked out",
	}, g.Scenarios("Login"))
	assert.Equal(t, []string{"chrome", "firefox", "safari"}, g.Browsers())
	assert.Equal(t, 5, g.Len())

	run, ok := g.Lookup("Search", "Feature: Search - Scenario: By tag", "chrome")
	require.True(t, ok)
	assert.Equal(t, models.StatusFail, run.Status)

	_, ok = g.Lookup("Search", "Feature: Search - Scenario: By tag", "safari")
	assert.False(t, ok)
}

func TestGroup_OrderIndependentContents(t *testing.T) {
	forward := []*models.FlatRecord{
		rec("Feature: A - Scenario: one", "chrome", models.StatusPass),
		rec("Feature: A - Scenario: one", "firefox", models.StatusFail),
		rec("Feature: B - Scenario: two", "chrome", models.StatusSkipped),
		rec("Feature: A - Scenario: three", "firefox", models.StatusPass),
	}
	reversed := make([]*models.FlatRecord, len(forward))
	for i, r := range forward {
		reversed[len(forward)-1-i] = r
	}

	browsers := []string{"chrome", "firefox"}
	g1, err := Group(forward, browsers)
	require.NoError(t, err)
	g2, err := Group(reversed, browsers)
	require.NoError(t, err)

	assert.ElementsMatch(t, g1.Features(), g2.Features())
	assert.Equal(t, g1.Browsers(), g2.Browsers())
	assert.Equal(t, g1.Len(), g2.Len())
	for _, f := range g1.Features() {
		assert.ElementsMatch(t, g1.Scenarios(f), g2.Scenarios(f))
		for _, s := range g1.Scenarios(f) {
			for _, b := range g1.Browsers() {
				r1, ok1 := g1.Lookup(f, s, b)
				r2, ok2 := g2.Lookup(f, s, b)
				assert.Equal(t, ok1, ok2)
				assert.Same(t, r1, r2)
			}
		}
	}
}

func TestGroup_LastWriteWins(t *testing.T) {
	first := rec("Feature: Login - Scenario: Valid user", "chrome", models.StatusFail)
	second := rec("Feature: Login - Scenario: Valid user", "chrome", models.StatusPass)

	g, err := Group([]*models.FlatRecord{first, second}, []string{"chrome"})
	require.NoError(t, err)

	run, ok := g.Lookup("Login", "Feature: Login - Scenario: Valid user", "chrome")
	require.True(t, ok)
	assert.Same(t, second, run)
	assert.Equal(t, 1, g.Len())
	assert.Len(t, g.Scenarios("Login"), 1)
}

func TestGroup_MalformedName(t *testing.T) {
	records := []*models.FlatRecord{
		rec("Feature: Login - Scenario: Valid user", "chrome", models.StatusPass),
		rec("just a test name", "chrome", models.StatusPass),
	}

	g, err := Group(records, []string{"chrome"})
	assert.Nil(t, g)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedTestName)
	assert.Contains(t, err.Error(), "just a test name")
}

func TestGroup_Empty(t *testing.T) {
	g, err := Group(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, g.Features())
	assert.Empty(t, g.Browsers())
}

func TestGroup_BrowsersComeFromCaller(t *testing.T) {
	records := []*models.FlatRecord{
		rec("Feature: Login - Scenario: Valid user", "chrome", models.StatusPass),
	}

	g, err := Group(records, []string{"chrome", "edge"})
	require.NoError(t, err)
	assert.Equal(t, []string{"chrome", "edge"}, g.Browsers())

	_, ok := g.Lookup("Login", "Feature: Login - Scenario: Valid user", "edge")
	assert.False(t, ok)
}
