package handlers

import (
	"encoding/json"
	"errors"

	"github.com/backsoul/partygames/pkg/engine"
	"github.com/backsoul/partygames/pkg/models"
	"github.com/backsoul/partygames/pkg/services"
	"github.com/valyala/fasthttp"
)

// respondWithJSON envía una respuesta JSON
func respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(statusCode)

	jsonData, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success": false, "error": "Error al serializar respuesta"}`)
		return
	}

	ctx.SetBody(jsonData)
}

// respondWithError envía una respuesta de error
func respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	response := models.APIResponse{
		Success: false,
		Error:   message,
	}
	respondWithJSON(ctx, statusCode, response)
}

// respondWithSuccess envía una respuesta exitosa
func respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	respondWithJSON(ctx, fasthttp.StatusOK, response)
}

// respondWithServiceError traduce los errores del juego a códigos HTTP
func respondWithServiceError(ctx *fasthttp.RequestCtx, err error) {
	respondWithError(ctx, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, engine.ErrUnknownParticipant):
		return fasthttp.StatusNotFound
	case errors.Is(err, engine.ErrNotPermitted):
		return fasthttp.StatusForbidden
	case errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrNotAuthority),
		errors.Is(err, services.ErrGameClosed):
		return fasthttp.StatusConflict
	case errors.Is(err, services.ErrRateLimited):
		return fasthttp.StatusTooManyRequests
	case errors.Is(err, engine.ErrPrefixMismatch),
		errors.Is(err, engine.ErrEmptyAnswer),
		errors.Is(err, engine.ErrInvalidOption),
		errors.Is(err, engine.ErrInvalidTarget),
		errors.Is(err, engine.ErrSelfVote),
		errors.Is(err, engine.ErrOverBudget),
		errors.Is(err, engine.ErrIncompleteAllocation),
		errors.Is(err, engine.ErrUnsupportedAction),
		errors.Is(err, engine.ErrUnknownVariant),
		errors.Is(err, services.ErrInvalidName):
		return fasthttp.StatusBadRequest
	}
	return fasthttp.StatusInternalServerError
}

func gameID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue("id").(string)
	return id
}
