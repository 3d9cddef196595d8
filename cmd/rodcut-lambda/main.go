// Command rodcut-lambda serves the optimizer behind an AWS Lambda function URL.
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/piwi3910/RodCut/internal/engine"
	"github.com/piwi3910/RodCut/internal/importer"
	"github.com/piwi3910/RodCut/internal/logging"
	"github.com/piwi3910/RodCut/internal/model"
)

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type optimizeResponse struct {
	Solution     *model.Solution `json:"solution"`
	Reward       float64         `json:"reward"`
	Rods         []model.Rod     `json:"rods"`
	Pieces       []model.Piece   `json:"pieces"`
	Combinations uint64          `json:"combinations"`
	Evaluated    uint64          `json:"evaluated"`
	Feasible     uint64          `json:"feasible"`
	TimeMs       int64           `json:"timeMs"`
}

type handler struct {
	settings model.Settings
	logger   logging.Logger
}

func (h handler) handle(ctx context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(http.StatusBadRequest, "invalid base64 body")
		}
		body = string(decoded)
	}

	job, err := importer.ParseJSONJob([]byte(body))
	if err != nil {
		return errResp(http.StatusBadRequest, err.Error())
	}

	settings := h.settings
	settings.SortOrder = job.SortOrder

	result, err := engine.New(settings, engine.WithLogger(h.logger)).Optimize(ctx, job.Rods, job.Pieces)
	switch {
	case errors.Is(err, engine.ErrInvalidInput):
		return errResp(http.StatusBadRequest, err.Error())
	case errors.Is(err, engine.ErrSearchTooLarge):
		return errResp(http.StatusRequestEntityTooLarge, err.Error())
	case err != nil:
		h.logger.Error("optimize failed", "error", err)
		return errResp(http.StatusInternalServerError, err.Error())
	case !result.Found():
		return errResp(http.StatusUnprocessableEntity, engine.ErrNoFeasibleSolution.Error())
	}

	resp := optimizeResponse{
		Solution:     result.Solution,
		Reward:       result.Solution.Reward,
		Rods:         result.Rods,
		Pieces:       result.Pieces,
		Combinations: result.Combinations,
		Evaluated:    result.Evaluated,
		Feasible:     result.Feasible,
		TimeMs:       result.ElapsedMs,
	}
	respJSON, err := json.Marshal(resp)
	if err != nil {
		return errResp(http.StatusInternalServerError, err.Error())
	}
	return events.LambdaFunctionURLResponse{StatusCode: http.StatusOK, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	h := handler{settings: model.DefaultSettings(), logger: logging.NewJSON(os.Stderr, os.Getenv("RODCUT_DEBUG") != "")}
	lambda.Start(h.handle)
}
