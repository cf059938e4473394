package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/covenhold/warlock/internal/catalog"
	"github.com/covenhold/warlock/internal/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Races: []catalog.Race{
			{ID: "human", Name: "Human", Racial: catalog.RacialAbility{ID: "adaptability", Usage: "perGame"}},
		},
		Classes: []catalog.Class{
			{ID: "warrior", Name: "Warrior", Abilities: []catalog.Ability{
				{ID: "slash", Category: "attack", Target: "monster"},
			}},
		},
		Compatibility: []catalog.Compatibility{
			{Race: "human", Classes: []string{"warrior"}},
		},
	}
}

func newTestRouter() http.Handler {
	h := httpapi.NewHandler(testCatalog(), zap.NewNop())
	return httpapi.NewRouter(h)
}

func TestGetConfigReturnsFullCatalog(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got catalog.Catalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Races, 1)
}

func TestGetRacesReturnsRaceList(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/config/races", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var races []catalog.Race
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &races))
	require.Len(t, races, 1)
	assert.Equal(t, "human", races[0].ID)
}

func TestGetAbilitiesForClassReturnsAbilities(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/config/abilities/warrior", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var abilities []catalog.Ability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &abilities))
	require.Len(t, abilities, 1)
	assert.Equal(t, "slash", abilities[0].ID)
}

func TestGetAbilitiesForClassUnknownClassReturns404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/config/abilities/ghost", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCompatibilityReturnsTable(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/config/compatibility", nil)
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var compat []catalog.Compatibility
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &compat))
	require.Len(t, compat, 1)
	assert.Equal(t, "human", compat[0].Race)
}
