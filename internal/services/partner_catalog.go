package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"partnerhub-backend/internal/models"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartnerCatalog resolves a service id to a brokered partner.
type PartnerCatalog interface {
	Lookup(ctx context.Context, serviceID string) (*models.Partner, error)
}

// DefaultPartners is seeded when no partners file is configured.
var DefaultPartners = []models.Partner{
	{ID: "notes", Name: "Notes", URL: "/apps/notes", Bridged: false, Active: true},
	{ID: "design-studio", Name: "Design Studio", URL: "https://design.partner.example/handoff", Bridged: true, Active: true},
	{ID: "transcriber", Name: "Transcriber", URL: "https://transcribe.partner.example/session", Bridged: true, Active: true},
}

// GormPartnerCatalog reads partners from the partners table.
type GormPartnerCatalog struct {
	db *gorm.DB
}

func NewGormPartnerCatalog(db *gorm.DB) *GormPartnerCatalog {
	return &GormPartnerCatalog{db: db}
}

// Lookup returns ErrUnknownService for missing or inactive partners.
func (c *GormPartnerCatalog) Lookup(ctx context.Context, serviceID string) (*models.Partner, error) {
	if serviceID == "" {
		return nil, ErrUnknownService
	}
	var partner models.Partner
	err := c.db.WithContext(ctx).Where("id = ? AND active = ?", serviceID, true).Take(&partner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownService
	}
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// Seed inserts partners or refreshes existing rows with the same id.
func (c *GormPartnerCatalog) Seed(ctx context.Context, partners []models.Partner) error {
	if len(partners) == 0 {
		return nil
	}
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "url", "bridged", "active", "updated_at"}),
	}).Create(&partners).Error
}

type partnerFileEntry struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	URL     string `json:"url" yaml:"url"`
	Bridged *bool  `json:"bridged" yaml:"bridged"`
	Active  *bool  `json:"active" yaml:"active"`
}

// LoadPartnersFile reads a list of partners from a JSON file, or YAML when the
// extension is .yaml or .yml. Omitted flags default to bridged and active.
func LoadPartnersFile(path string) ([]models.Partner, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []partnerFileEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &entries)
	default:
		err = json.Unmarshal(raw, &entries)
	}
	if err != nil {
		return nil, fmt.Errorf("parse partners file %s: %w", path, err)
	}

	partners := make([]models.Partner, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" || e.URL == "" {
			return nil, fmt.Errorf("partner #%d needs both id and url", i)
		}
		p := models.Partner{ID: e.ID, Name: e.Name, URL: e.URL, Bridged: true, Active: true}
		if e.Bridged != nil {
			p.Bridged = *e.Bridged
		}
		if e.Active != nil {
			p.Active = *e.Active
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		partners = append(partners, p)
	}
	return partners, nil
}
