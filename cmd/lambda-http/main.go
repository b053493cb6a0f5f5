// Command lambda-http serves the screening API from AWS Lambda behind an API
// Gateway HTTP API (payload format 2.0).
//
//	GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"resume-screener/internal/bootstrap"
	"resume-screener/internal/shared/config"
	"resume-screener/internal/shared/server/respond"
	"resume-screener/internal/shared/telemetry"
)

// proxy is built once per execution environment. Runs survive cold starts only
// when DATABASE_URL names a shared database.
var proxy = sync.OnceValues(func() (*ginadapter.GinLambdaV2, error) {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		return nil, err
	}
	telemetry.Info("lambda.ready", map[string]any{
		"env":        cfg.Env,
		"storage":    app.Health.Status(context.Background()).Storage,
		"industries": len(app.Taxonomy.Industries()),
	})
	return ginadapter.NewV2(app.Router), nil
})

func handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	adapter, err := proxy()
	if err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{
			"error":      err,
			"request_id": req.RequestContext.RequestID,
			"route":      req.RouteKey,
		})
		return bootstrapFailure(), nil
	}
	return adapter.ProxyWithContext(ctx, req)
}

func bootstrapFailure() events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{
		Code:    respond.CodeInternal,
		Message: "service unavailable",
	}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func main() {
	lambda.Start(handle)
}
