package models

import (
	"time"

	"gorm.io/datatypes"
)

// Modality is the kind of data a workflow step consumes or produces.
type Modality string

const (
	ModalityText     Modality = "text"
	ModalityImage    Modality = "image"
	ModalityAudio    Modality = "audio"
	ModalityVideo    Modality = "video"
	ModalityDocument Modality = "document"
)

// Modalities lists every supported modality.
var Modalities = []Modality{ModalityText, ModalityImage, ModalityAudio, ModalityVideo, ModalityDocument}

func (m Modality) Valid() bool {
	for _, known := range Modalities {
		if m == known {
			return true
		}
	}
	return false
}

// Workflow is a user-authored chain of AI steps. Price is never below the floor
// computed from its steps.
type Workflow struct {
	ID          string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatorID   string         `gorm:"type:varchar(64);index;not null" json:"creator_id"`
	Name        string         `gorm:"type:varchar(200);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Monetized   bool           `gorm:"not null;default:false" json:"monetized"`
	Price       int64          `gorm:"not null;default:0" json:"price"`
	Steps       []WorkflowStep `gorm:"constraint:OnDelete:CASCADE" json:"steps"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Workflow) TableName() string {
	return "workflows"
}

// WorkflowStep is one processing stage. Order is 1-based and decides execution
// sequence; slice position does not.
type WorkflowStep struct {
	ID         uint     `gorm:"primarykey" json:"-"`
	WorkflowID string   `gorm:"type:varchar(36);index;not null" json:"-"`
	Order      int      `gorm:"column:step_order;not null" json:"order"`
	AIModel    string   `gorm:"type:varchar(100);not null" json:"ai_model"`
	InputType  Modality `gorm:"type:varchar(20);not null" json:"input_type"`
	OutputType Modality `gorm:"type:varchar(20);not null" json:"output_type"`
	Prompt     string   `gorm:"type:text" json:"prompt"`
}

func (WorkflowStep) TableName() string {
	return "workflow_steps"
}

// WorkflowRun records one execution and its outputs.
type WorkflowRun struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	WorkflowID     string         `gorm:"type:varchar(36);index" json:"workflow_id,omitempty"`
	UserID         string         `gorm:"type:varchar(64);index;not null" json:"user_id"`
	Input          string         `gorm:"type:text" json:"input"`
	Outputs        datatypes.JSON `gorm:"type:json" json:"outputs" swaggertype:"array,object"`
	SimulatedSteps int            `gorm:"not null;default:0" json:"simulated_steps"`
	CreatedAt      time.Time      `json:"created_at"`
}

func (WorkflowRun) TableName() string {
	return "workflow_runs"
}
