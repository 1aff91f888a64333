package services

import (
	"context"
	"encoding/json"
	"fmt"
	"partnerhub-backend/internal/metrics"
	"partnerhub-backend/internal/models"
	"partnerhub-backend/pkg/logger"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// simulatedPrefixRunes bounds how much of the input a simulated output echoes.
const simulatedPrefixRunes = 80

// DefaultStepTimeout applies to a provider call when the engine has none configured.
const DefaultStepTimeout = 30 * time.Second

type OutputKind string

const (
	OutputKindReal      OutputKind = "real"
	OutputKindSimulated OutputKind = "simulated"
)

// StepOutput is the result of one step. Value is a string or a structured map.
type StepOutput struct {
	Order int             `json:"order"`
	Model string          `json:"model"`
	Type  models.Modality `json:"type"`
	Value interface{}     `json:"value"`
	Kind  OutputKind      `json:"kind"`
}

// Text returns the value as the next step would receive it.
func (o StepOutput) Text() string {
	return serializeValue(o.Value)
}

// WorkflowEngine runs steps sequentially, chaining each output into the next
// input. Provider failures degrade to simulated outputs and never abort a run.
type WorkflowEngine struct {
	invoker   ModelInvoker
	timeout   time.Duration
	maxTokens int
}

// NewWorkflowEngine builds an engine. A nil invoker means every step is simulated.
func NewWorkflowEngine(invoker ModelInvoker, timeout time.Duration, maxTokens int) *WorkflowEngine {
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &WorkflowEngine{invoker: invoker, timeout: timeout, maxTokens: maxTokens}
}

// Run executes steps in Order and returns one output per step.
func (e *WorkflowEngine) Run(ctx context.Context, steps []models.WorkflowStep, initialInput string) ([]StepOutput, error) {
	ordered, err := OrderSteps(steps)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.WorkflowRunDuration.Observe(time.Since(start).Seconds()) }()

	// A started run completes even if the caller goes away.
	runCtx := context.WithoutCancel(ctx)

	outputs := make([]StepOutput, 0, len(ordered))
	current := initialInput
	for _, step := range ordered {
		out := e.invokeStep(runCtx, step, current)
		metrics.WorkflowSteps.WithLabelValues(string(out.Kind)).Inc()
		outputs = append(outputs, out)
		current = out.Text()
	}
	return outputs, nil
}

func (e *WorkflowEngine) invokeStep(ctx context.Context, step models.WorkflowStep, input string) StepOutput {
	out := StepOutput{Order: step.Order, Model: step.AIModel, Type: step.OutputType}

	if e.invoker == nil || !IsTextModel(step.AIModel) {
		out.Value = simulatedOutput(step, input)
		out.Kind = OutputKindSimulated
		return out
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.invoker.Invoke(callCtx, Invocation{
		Model:        step.AIModel,
		SystemPrompt: step.Prompt,
		Input:        input,
		MaxTokens:    e.maxTokens,
	})
	if err != nil {
		logger.Log.Warn("Model invocation failed, simulating step output",
			zap.String("model", step.AIModel),
			zap.Int("order", step.Order),
			zap.Error(err),
		)
		out.Value = simulatedOutput(step, input)
		out.Kind = OutputKindSimulated
		return out
	}

	out.Value = decodeValue(text, step.OutputType)
	out.Kind = OutputKindReal
	return out
}

// decodeValue keeps text outputs as strings. Media outputs that arrive as a JSON
// object, such as {"object_key": "..."}, become structured values.
func decodeValue(text string, outputType models.Modality) interface{} {
	trimmed := strings.TrimSpace(text)
	if outputType == models.ModalityText || !strings.HasPrefix(trimmed, "{") {
		return text
	}
	var structured map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &structured); err != nil {
		return text
	}
	return structured
}

// OrderSteps returns a copy of steps sorted by Order. Steps without a model, with
// an order below 1 or sharing an order are rejected with ErrMalformedSteps.
func OrderSteps(steps []models.WorkflowStep) ([]models.WorkflowStep, error) {
	seen := make(map[int]struct{}, len(steps))
	for i, step := range steps {
		if strings.TrimSpace(step.AIModel) == "" {
			return nil, fmt.Errorf("%w: step %d has no ai_model", ErrMalformedSteps, i+1)
		}
		if step.Order < 1 {
			return nil, fmt.Errorf("%w: step %d has order %d", ErrMalformedSteps, i+1, step.Order)
		}
		if _, dup := seen[step.Order]; dup {
			return nil, fmt.Errorf("%w: duplicate order %d", ErrMalformedSteps, step.Order)
		}
		seen[step.Order] = struct{}{}
	}

	ordered := make([]models.WorkflowStep, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })
	return ordered, nil
}

func simulatedOutput(step models.WorkflowStep, input string) string {
	return fmt.Sprintf("[simulated %s output from %s] input (%d chars): %s",
		step.OutputType, step.AIModel, utf8.RuneCountInString(input), truncate(input, simulatedPrefixRunes))
}

// serializeValue turns a step value into text for the next step. Key order of
// structured values is not significant.
func serializeValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
