package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"partnerhub-backend/internal/models"
	"partnerhub-backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CreateWorkflowInput holds the creator-supplied fields of a new workflow.
type CreateWorkflowInput struct {
	Name        string
	Description string
	Monetized   bool
	Price       int64
	Steps       []models.WorkflowStep
}

// RunResult is a persisted run together with its typed outputs.
type RunResult struct {
	Run     *models.WorkflowRun `json:"run"`
	Outputs []StepOutput        `json:"outputs"`
}

// WorkflowService persists workflows, keeps their price at or above the floor
// and runs them through the engine.
type WorkflowService struct {
	db        *gorm.DB
	engine    *WorkflowEngine
	estimator *CostEstimator
	ledger    *TransactionService
	signer    MediaSigner
}

// NewWorkflowService builds the service. signer may be nil.
func NewWorkflowService(db *gorm.DB, engine *WorkflowEngine, estimator *CostEstimator, ledger *TransactionService, signer MediaSigner) *WorkflowService {
	return &WorkflowService{db: db, engine: engine, estimator: estimator, ledger: ledger, signer: signer}
}

// Estimate returns the price floor of steps.
func (s *WorkflowService) Estimate(steps []models.WorkflowStep) (int64, error) {
	if _, err := OrderSteps(steps); err != nil {
		return 0, err
	}
	return s.estimator.MinimumCost(steps), nil
}

func (s *WorkflowService) Create(ctx context.Context, creatorID string, in CreateWorkflowInput) (*models.Workflow, error) {
	if creatorID == "" {
		return nil, ErrUnauthenticated
	}
	ordered, err := OrderSteps(in.Steps)
	if err != nil {
		return nil, err
	}
	for i := range ordered {
		ordered[i].ID = 0
	}

	wf := &models.Workflow{
		ID:          uuid.New().String(),
		CreatorID:   creatorID,
		Name:        in.Name,
		Description: in.Description,
		Monetized:   in.Monetized,
		Price:       s.estimator.ClampPrice(in.Price, ordered),
		Steps:       ordered,
	}
	if err := s.db.WithContext(ctx).Create(wf).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("workflow created",
		zap.String("workflow_id", wf.ID),
		zap.String("creator_id", creatorID),
		zap.Int("steps", len(ordered)),
		zap.Int64("price", wf.Price))
	return wf, nil
}

func (s *WorkflowService) Get(ctx context.Context, id string) (*models.Workflow, error) {
	return s.get(s.db.WithContext(ctx), id)
}

func (s *WorkflowService) get(db *gorm.DB, id string) (*models.Workflow, error) {
	var wf models.Workflow
	err := db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_order asc")
	}).Where("id = ?", id).Take(&wf).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

// ReplaceSteps swaps the step list and raises the price if the new floor is higher.
func (s *WorkflowService) ReplaceSteps(ctx context.Context, userID, id string, steps []models.WorkflowStep) (*models.Workflow, error) {
	ordered, err := OrderSteps(steps)
	if err != nil {
		return nil, err
	}

	var wf *models.Workflow
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.get(tx, id)
		if err != nil {
			return err
		}
		if current.CreatorID != userID {
			return ErrForbidden
		}

		if err := tx.Where("workflow_id = ?", id).Delete(&models.WorkflowStep{}).Error; err != nil {
			return err
		}
		for i := range ordered {
			ordered[i].ID = 0
			ordered[i].WorkflowID = id
		}
		if len(ordered) > 0 {
			if err := tx.Create(&ordered).Error; err != nil {
				return err
			}
		}

		price := s.estimator.ClampPrice(current.Price, ordered)
		if err := tx.Model(&models.Workflow{}).Where("id = ?", id).Update("price", price).Error; err != nil {
			return err
		}

		wf, err = s.get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return wf, nil
}

// UpdatePrice stores max(price, floor). A nil monetized leaves the flag unchanged.
func (s *WorkflowService) UpdatePrice(ctx context.Context, userID, id string, price int64, monetized *bool) (*models.Workflow, error) {
	var wf *models.Workflow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.get(tx, id)
		if err != nil {
			return err
		}
		if current.CreatorID != userID {
			return ErrForbidden
		}

		updates := map[string]interface{}{"price": s.estimator.ClampPrice(price, current.Steps)}
		if monetized != nil {
			updates["monetized"] = *monetized
		}
		if err := tx.Model(&models.Workflow{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		wf, err = s.get(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return wf, nil
}

// RunWorkflow executes a stored workflow for userID and records the run. Running
// someone else's monetized workflow also records a purchase.
func (s *WorkflowService) RunWorkflow(ctx context.Context, userID, id, input string) (*RunResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	wf, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	outputs, err := s.engine.Run(ctx, wf.Steps, input)
	if err != nil {
		return nil, err
	}

	var purchase *models.Transaction
	if wf.Monetized && wf.Price > 0 && wf.CreatorID != userID {
		purchase = &models.Transaction{
			UserID:     userID,
			WorkflowID: wf.ID,
			Amount:     wf.Price,
			Type:       models.TransactionTypeWorkflowPurchase,
			Reason:     fmt.Sprintf("run of workflow %q", wf.Name),
			Operator:   userID,
		}
	}
	return s.persistRun(ctx, userID, wf.ID, input, outputs, purchase)
}

// RunAdhoc executes steps that are not stored as a workflow.
func (s *WorkflowService) RunAdhoc(ctx context.Context, userID string, steps []models.WorkflowStep, input string) (*RunResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	outputs, err := s.engine.Run(ctx, steps, input)
	if err != nil {
		return nil, err
	}
	return s.persistRun(ctx, userID, "", input, outputs, nil)
}

func (s *WorkflowService) persistRun(ctx context.Context, userID, workflowID, input string, outputs []StepOutput, purchase *models.Transaction) (*RunResult, error) {
	outputs = signMediaOutputs(s.signer, outputs)

	encoded, err := json.Marshal(outputs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode outputs: %w", err)
	}

	simulated := 0
	for _, out := range outputs {
		if out.Kind == OutputKindSimulated {
			simulated++
		}
	}

	run := &models.WorkflowRun{
		ID:             uuid.New().String(),
		WorkflowID:     workflowID,
		UserID:         userID,
		Input:          input,
		Outputs:        datatypes.JSON(encoded),
		SimulatedSteps: simulated,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		if purchase != nil {
			return s.ledger.Record(tx, purchase)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("workflow run finished",
		zap.String("run_id", run.ID),
		zap.String("workflow_id", workflowID),
		zap.String("user_id", userID),
		zap.Int("steps", len(outputs)),
		zap.Int("simulated", simulated))
	return &RunResult{Run: run, Outputs: outputs}, nil
}
