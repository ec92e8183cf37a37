// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/sirupsen/logrus"

	"nutrition-log/internal/models"
	"nutrition-log/internal/render"
)

type LogMealParams struct {
	UserID      string `json:"user_id" description:"Opaque identifier of the user"`
	Description string `json:"description" description:"Natural-language food description, e.g. banana"`
	AmountGrams int    `json:"amount_grams" description:"Serving weight in grams"`
}

type QueryParams struct {
	UserID string `json:"user_id" description:"Opaque identifier of the user"`
	Kind   string `json:"kind" description:"itemization, average, export or chart"`
	Period string `json:"period,omitempty" description:"day, week, month, year or all (defaults to day)"`
}

type ChatParams struct {
	UserID string `json:"user_id" description:"Opaque identifier of the user"`
	Text   string `json:"text" description:"Chat message, e.g. /add_meal banana 120"`
}

// errorPayload is what a tool returns instead of a result when the
// operation fails for a reason the user can act on.
type errorPayload struct {
	Error   models.ErrorKind `json:"error"`
	Message string           `json:"message"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	return nil
}

func (s *NutritionLogServer) handleLogMeal(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogMealParams
	if err := extractParams(req, &params); err != nil {
		return s.errorResponse(err, params.UserID)
	}

	record, err := s.tracker.LogMeal(ctx, params.UserID, params.Description, params.AmountGrams)
	if err != nil {
		return s.errorResponse(err, params.UserID)
	}
	return s.createJSONResponse(record)
}

func (s *NutritionLogServer) handleQuery(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params QueryParams
	if err := extractParams(req, &params); err != nil {
		return s.errorResponse(err, params.UserID)
	}

	kind, err := models.ParseQueryKind(params.Kind)
	if err != nil {
		return s.errorResponse(err, params.UserID)
	}
	if params.Period == "" {
		params.Period = models.PeriodDay.String()
	}
	period, err := models.ParsePeriod(params.Period)
	if err != nil {
		return s.errorResponse(err, params.UserID)
	}

	result, err := s.tracker.Query(ctx, params.UserID, kind, period)
	if err != nil {
		return s.errorResponse(err, params.UserID)
	}
	return s.createJSONResponse(result)
}

// handleChat runs one chat command and answers with reply text.
func (s *NutritionLogServer) handleChat(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ChatParams
	if err := extractParams(req, &params); err != nil {
		return createTextResponse(render.UserMessage(err)), nil
	}

	reply, err := s.chat(ctx, params.UserID, params.Text)
	if err != nil {
		s.logFailure(err, params.UserID)
		return createTextResponse(render.UserMessage(err)), nil
	}
	return createTextResponse(reply), nil
}

func (s *NutritionLogServer) chat(ctx context.Context, userID, text string) (string, error) {
	cmd, err := ParseCommand(text)
	if err != nil {
		return "", err
	}

	switch cmd.Name {
	case cmdHelp:
		return render.Usage, nil
	case cmdAddMeal:
		record, err := s.tracker.LogMeal(ctx, userID, cmd.Food, cmd.Grams)
		if err != nil {
			return "", err
		}
		return render.MealLogged(record), nil
	}

	result, err := s.tracker.Query(ctx, userID, cmd.Kind, cmd.Period)
	if err != nil {
		return "", err
	}

	reply := render.Reply(result)
	switch result.Kind {
	case models.KindExport:
		csv, err := render.CSV(result.Table)
		if err != nil {
			return "", err
		}
		reply += fmt.Sprintf("\nDownload: %s\n\n%s", attachmentURL(exportPath, userID, result.Period), csv)
	case models.KindChart:
		reply += fmt.Sprintf("\nImage: %s", attachmentURL(chartPath, userID, result.Period))
	}
	return reply, nil
}

func (s *NutritionLogServer) errorResponse(err error, userID string) (*protocol.CallToolResult, error) {
	s.logFailure(err, userID)
	return s.createJSONResponse(errorPayload{
		Error:   models.KindOf(err),
		Message: render.UserMessage(err),
	})
}

// logFailure logs at warn for failures the user did not cause.
func (s *NutritionLogServer) logFailure(err error, userID string) {
	log := s.logger.WithFields(logrus.Fields{"user_id": userID, "error": err})
	switch models.KindOf(err) {
	case models.KindProviderError, models.KindStorageError, models.KindInternal:
		log.Warn("request failed")
	default:
		log.Debug("request rejected")
	}
}

func attachmentURL(path, userID string, period models.Period) string {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("period", period.String())
	return path + "?" + q.Encode()
}

func (s *NutritionLogServer) registerTools() {
	s.tools = map[string]toolHandler{
		"log_meal": s.handleLogMeal,
		"query":    s.handleQuery,
		"chat":     s.handleChat,
	}

	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	s.logger.WithField("tools", strings.Join(names, ",")).Debug("registered tools")
}
