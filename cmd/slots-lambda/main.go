// Command slots-lambda serves the working-slots lookup behind API
// Gateway, preserving the original serverless deployment of the widget
// endpoint.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/restylehq/booking-platform/internal/availability"
	appconfig "github.com/restylehq/booking-platform/internal/config"
	"github.com/restylehq/booking-platform/internal/schedule"
	"github.com/restylehq/booking-platform/pkg/logging"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Authorization, Content-Type",
	"Access-Control-Allow-Methods": "GET, OPTIONS",
	"Content-Type":                 "application/json",
}

type app struct {
	engine *availability.Engine
	logger *logging.Logger
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	loc, err := time.LoadLocation(cfg.BookingTimezone)
	if err != nil {
		logger.Error("invalid BOOKING_TIMEZONE", "timezone", cfg.BookingTimezone, "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}

	store := schedule.NewStore(pool, loc, logger)
	a := &app{
		engine: availability.NewEngine(store, loc, availability.NopObserver{}).
			WithWindow(cfg.SlotWindowDays, cfg.SlotIntervalMinutes),
		logger: logger,
	}

	lambda.Start(a.handle)
}

func (a *app) handle(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	if method == http.MethodOptions {
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Headers: corsHeaders}, nil
	}
	if method != http.MethodGet {
		return respond(http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"}), nil
	}

	query, err := url.ParseQuery(evt.RawQueryString)
	if err != nil {
		query = url.Values{}
	}
	for k, v := range evt.QueryStringParameters {
		if query.Get(k) == "" {
			query.Set(k, v)
		}
	}

	calendarID := query.Get("calendarId")
	if calendarID == "" {
		return respond(http.StatusBadRequest, map[string]string{"error": "calendarId is required"}), nil
	}

	req := availability.Request{StaffID: query.Get("userId")}
	if raw := query.Get("serviceDuration"); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			req.ServiceDuration = minutes
		}
	}
	if raw := query.Get("date"); raw != "" {
		if day, err := availability.ParseDay(raw, a.engine.Location()); err == nil {
			req.Start = day
		}
	}
	if req.Start.IsZero() {
		req.Start = time.Now().In(a.engine.Location())
	}

	result, err := a.engine.Compute(ctx, req)
	if err != nil {
		a.logger.Error("slot computation failed", "calendar_id", calendarID, "error", err)
		return respond(http.StatusInternalServerError, map[string]string{
			"error":   "Failed to fetch working slots",
			"details": err.Error(),
		}), nil
	}

	return respond(http.StatusOK, map[string]any{
		"calendarId": calendarID,
		"activeDay":  "allDays",
		"startDate":  result.StartDate,
		"slots":      result.Slots,
	}), nil
}

func respond(status int, body any) events.APIGatewayV2HTTPResponse {
	encoded, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    corsHeaders,
		Body:       string(encoded),
	}
}
