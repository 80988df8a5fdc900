package services

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/PranavZagade/Lumora/pkg/apperrors"
	"github.com/PranavZagade/Lumora/pkg/dataset"
	"github.com/PranavZagade/Lumora/pkg/engine"
	"github.com/PranavZagade/Lumora/pkg/logging"
	"github.com/PranavZagade/Lumora/pkg/models"
	"github.com/PranavZagade/Lumora/pkg/semantics"
	"github.com/PranavZagade/Lumora/pkg/sql"
	"github.com/PranavZagade/Lumora/pkg/viz"
)

// Stored document names within a dataset session.
const (
	profileDocument  = "profile"
	mappingsDocument = "mappings"
)

const tableName = "data"

// AskResponse is the full answer to one question: text always, a
// validated chart spec when the result earned one.
type AskResponse struct {
	DatasetID          string            `json:"dataset_id"`
	Question           string            `json:"question"`
	Answer             string            `json:"answer"`
	NeedsClarification bool              `json:"needs_clarification,omitempty"`
	Result             json.RawMessage   `json:"result,omitempty"`
	Visualization      *models.ChartSpec `json:"visualization"`
	Warnings           []string          `json:"warnings,omitempty"`
}

// AskService runs the full pipeline for one question: semantic
// screening, SQL generation, validation, execution, and result
// shaping, then visualization as a strictly best-effort tail.
type AskService struct {
	storage     *dataset.Storage
	classifier  *semantics.Classifier
	generator   *Generator
	executor    *engine.Executor
	answers     *AnswerFormatter
	constraints engine.Constraints
	logger      *zap.Logger
}

// NewAskService wires the pipeline stages together.
func NewAskService(
	storage *dataset.Storage,
	classifier *semantics.Classifier,
	generator *Generator,
	executor *engine.Executor,
	answers *AnswerFormatter,
	constraints engine.Constraints,
	logger *zap.Logger,
) *AskService {
	return &AskService{
		storage:     storage,
		classifier:  classifier,
		generator:   generator,
		executor:    executor,
		answers:     answers,
		constraints: constraints,
		logger:      logger.Named("ask"),
	}
}

// Ask answers a question against a stored dataset. Validation and
// execution failures return kinded errors for the handler to template;
// clarifications and refusals come back as normal responses. A failure
// anywhere in the visualization stages degrades to a nil chart and
// never touches the textual answer.
func (s *AskService) Ask(ctx context.Context, datasetID, question string) (*AskResponse, error) {
	var profile models.DatasetProfile
	if err := s.storage.ReadJSON(datasetID, profileDocument, &profile); err != nil {
		return nil, err
	}

	resp := &AskResponse{DatasetID: datasetID, Question: question}

	// Shape and column questions never need a query.
	if IsMetadataQuestion(question) {
		resp.Answer = FormatMetadataAnswer(question, &profile)
		return resp, nil
	}

	mappings := s.loadMappings(datasetID)
	resolution := s.classifier.Resolve(question, mappings)
	if resolution.NeedsClarification {
		resp.NeedsClarification = true
		resp.Answer = resolution.Message
		return resp, nil
	}

	generated, err := s.generator.Generate(ctx, GenerationRequest{
		Question:         question,
		Profile:          &profile,
		TableName:        tableName,
		SemanticMappings: resolution.MappedConcepts,
	})
	if err != nil {
		return nil, err
	}
	if generated.NeedsClarification() {
		resp.NeedsClarification = true
		resp.Answer = generated.Clarification
		return resp, nil
	}

	outcome := sql.Validate(generated.Query, profile.ColumnNames(), tableName, columnStats(&profile))
	if !outcome.IsValid {
		s.logger.Warn("generated query rejected",
			zap.String("dataset_id", datasetID),
			zap.String("query", logging.SanitizeQuery(generated.Query)),
			zap.String("reason", outcome.Error))
		return nil, apperrors.New(apperrors.KindValidationRejected, outcome.Error)
	}
	resp.Warnings = append(resp.Warnings, outcome.Warnings...)

	csvPath, err := s.storage.FilePath(datasetID, profile.Filename)
	if err != nil {
		return nil, err
	}

	result, err := s.executor.Execute(ctx, engine.Dataset{
		TableName: tableName,
		CSVPath:   csvPath,
		TotalRows: profile.TotalRows,
	}, generated.Query, s.constraints)
	if err != nil {
		return nil, err
	}

	payload, err := models.MarshalResult(result)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindExecutionFailed, "encoding result", err)
	}
	resp.Result = payload

	spec, vizWarnings := s.buildVisualization(result)
	resp.Visualization = spec
	resp.Warnings = append(resp.Warnings, vizWarnings...)

	resp.Answer = s.answers.Format(ctx, question, generated.Query, result)
	return resp, nil
}

// buildVisualization runs the metadata, eligibility, spec, and spec
// validation stages. Any failure, including a panic in a shaping bug,
// degrades to no chart.
func (s *AskService) buildVisualization(result models.ShapedResult) (spec *models.ChartSpec, warnings []string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("visualization stage panicked",
				zap.Any("panic", r),
				zap.String("result_type", string(result.Type())))
			spec = nil
			warnings = append(warnings, "visualization unavailable for this result")
		}
	}()

	metadata := viz.BuildMetadata(result)
	eligibility := viz.CheckEligibility(result, metadata)
	if !eligibility.Eligible {
		s.logger.Debug("result not eligible for visualization",
			zap.String("reason", eligibility.Reason))
		return nil, nil
	}

	candidate := viz.GenerateSpec(result, metadata, eligibility)
	if candidate == nil {
		return nil, nil
	}

	validation := viz.ValidateSpec(candidate, result)
	if !validation.Valid {
		s.logger.Error("generated chart spec failed validation",
			zap.String("reason", validation.Error),
			zap.String("chart_type", string(candidate.ChartType)))
		return nil, []string{"visualization unavailable for this result"}
	}
	return candidate, validation.Warnings
}

// loadMappings returns the stored concept mappings, tolerating their
// absence.
func (s *AskService) loadMappings(datasetID string) map[string]string {
	var mappings map[string]string
	if err := s.storage.ReadJSON(datasetID, mappingsDocument, &mappings); err != nil {
		if !errors.Is(err, apperrors.ErrDatasetNotFound) {
			s.logger.Warn("could not load semantic mappings", zap.Error(err))
		}
		return map[string]string{}
	}
	return mappings
}

func columnStats(profile *models.DatasetProfile) map[string]sql.ColumnStats {
	stats := make(map[string]sql.ColumnStats, len(profile.Columns))
	for _, col := range profile.Columns {
		stats[col.Name] = sql.ColumnStats{
			NullCount: col.NullCount,
			TotalRows: profile.TotalRows,
		}
	}
	return stats
}
