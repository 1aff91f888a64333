package services

import (
	"context"
	"os"
	"path/filepath"
	"partnerhub-backend/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartnerCatalogSeedAndLookup(t *testing.T) {
	ctx := context.Background()
	catalog := NewGormPartnerCatalog(setupTestDB(t))
	require.NoError(t, catalog.Seed(ctx, DefaultPartners))

	p, err := catalog.Lookup(ctx, "design-studio")
	require.NoError(t, err)
	assert.True(t, p.Bridged)
	assert.Equal(t, "https://design.partner.example/handoff", p.URL)

	_, err = catalog.Lookup(ctx, "")
	assert.ErrorIs(t, err, ErrUnknownService)
	_, err = catalog.Lookup(ctx, "nope")
	assert.ErrorIs(t, err, ErrUnknownService)
}

func TestPartnerCatalogSeedUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	catalog := NewGormPartnerCatalog(setupTestDB(t))
	require.NoError(t, catalog.Seed(ctx, DefaultPartners))

	require.NoError(t, catalog.Seed(ctx, []models.Partner{
		{ID: "notes", Name: "Notes", URL: "/apps/notes-v2", Active: true},
		{ID: "transcriber", Name: "Transcriber", URL: "https://transcribe.partner.example/session", Bridged: true, Active: false},
	}))

	p, err := catalog.Lookup(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "/apps/notes-v2", p.URL)

	_, err = catalog.Lookup(ctx, "transcriber")
	assert.ErrorIs(t, err, ErrUnknownService, "inactive partners are not brokered")
}

func writePartnersFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadPartnersFileJSON(t *testing.T) {
	path := writePartnersFile(t, "partners.json", `[
		{"id": "crm", "url": "https://crm.example/sso"},
		{"id": "wiki", "name": "Wiki", "url": "/apps/wiki", "bridged": false}
	]`)

	partners, err := LoadPartnersFile(path)
	require.NoError(t, err)
	require.Len(t, partners, 2)
	assert.Equal(t, models.Partner{ID: "crm", Name: "crm", URL: "https://crm.example/sso", Bridged: true, Active: true}, partners[0])
	assert.False(t, partners[1].Bridged)
	assert.True(t, partners[1].Active)
}

func TestLoadPartnersFileYAML(t *testing.T) {
	path := writePartnersFile(t, "partners.yaml", `
- id: crm
  name: CRM
  url: https://crm.example/sso
- id: legacy
  url: https://legacy.example
  active: false
`)

	partners, err := LoadPartnersFile(path)
	require.NoError(t, err)
	require.Len(t, partners, 2)
	assert.Equal(t, "CRM", partners[0].Name)
	assert.True(t, partners[0].Bridged)
	assert.False(t, partners[1].Active)
}

func TestLoadPartnersFileErrors(t *testing.T) {
	_, err := LoadPartnersFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadPartnersFile(writePartnersFile(t, "bad.json", `{"id": "x"}`))
	assert.Error(t, err)

	_, err = LoadPartnersFile(writePartnersFile(t, "incomplete.yml", "- id: crm\n"))
	assert.ErrorContains(t, err, "needs both id and url")
}
