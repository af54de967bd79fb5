package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/backsoul/partygames/pkg/engine"
	"github.com/backsoul/partygames/pkg/models"
	"github.com/backsoul/partygames/pkg/prompts"
	"github.com/backsoul/partygames/pkg/redis"
	"github.com/backsoul/partygames/pkg/services"
	websocketHub "github.com/backsoul/partygames/pkg/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

func newRequest(method, id, body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetBodyString(body)

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	if id != "" {
		ctx.SetUserValue("id", id)
	}
	return ctx
}

func decode(t *testing.T, ctx *fasthttp.RequestCtx) models.APIResponse {
	t.Helper()
	var response models.APIResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	return response
}

func newTestSessionService(t *testing.T) *services.SessionService {
	t.Helper()
	settings := map[models.Variant]engine.Settings{
		models.VariantTrivia: {Intro: time.Minute, Question: time.Minute, Reveal: time.Second, MaxRounds: 1, Points: 100},
	}
	svc := services.NewSessionService(nil, prompts.NewSource(prompts.Default(), 1), nil, settings, services.RunnerOptions{
		TickInterval:   5 * time.Millisecond,
		BroadcastEvery: 1,
		SubmitRate:     rate.Inf,
		SubmitBurst:    1,
	})
	t.Cleanup(svc.Close)
	return svc
}

func createGame(t *testing.T, h *SessionHandler) string {
	t.Helper()
	ctx := newRequest("POST", "", `{"variant":"trivia"}`)
	h.CreateGame(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	data := decode(t, ctx).Data.(map[string]interface{})
	return data["id"].(string)
}

func TestCreateGame(t *testing.T) {
	h := NewSessionHandler(newTestSessionService(t))

	id := createGame(t, h)
	assert.NotEmpty(t, id)

	ctx := newRequest("POST", "", `{`)
	h.CreateGame(ctx)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = newRequest("POST", "", `{"variant":"bingo"}`)
	h.CreateGame(ctx)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.False(t, decode(t, ctx).Success)

	ctx = newRequest("GET", "", "")
	h.ListGames(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Len(t, decode(t, ctx).Data, 1)
}

func TestJoinAndView(t *testing.T) {
	h := NewSessionHandler(newTestSessionService(t))
	id := createGame(t, h)

	ctx := newRequest("POST", id, `{"name":"Ana"}`)
	h.Join(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = newRequest("POST", id, `{"name":""}`)
	h.Join(ctx)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = newRequest("GET", id, "")
	h.GetGame(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	view := decode(t, ctx).Data.(map[string]interface{})
	assert.Equal(t, string(models.PhaseIntro), view["phase"])
	assert.Len(t, view["participants"], 1)

	ctx = newRequest("GET", "missing", "")
	h.GetGame(ctx)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestSubmitActionOutsidePhase(t *testing.T) {
	h := NewSessionHandler(newTestSessionService(t))
	id := createGame(t, h)

	ctx := newRequest("POST", id, `{"name":"Ana"}`)
	h.Join(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = newRequest("POST", id, `{"index":0,"action":{"kind":"choose","choice":0}}`)
	h.SubmitAction(ctx)
	assert.Equal(t, fasthttp.StatusConflict, ctx.Response.StatusCode())

	ctx = newRequest("POST", id, `{"index":9,"action":{"kind":"choose","choice":0}}`)
	h.SubmitAction(ctx)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	ctx = newRequest("POST", id, `{"index":0}`)
	h.Leave(ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
}

func TestStandingsHistoryAndRestart(t *testing.T) {
	svc := newTestSessionService(t)
	h := NewSessionHandler(svc)
	gc := NewGameControlHandler(svc, websocketHub.NewHub())
	id := createGame(t, h)

	ctx := newRequest("GET", id, "")
	h.GetStandings(ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = newRequest("GET", id, "")
	h.GetHistory(ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = newRequest("POST", id, "")
	gc.Restart(ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = newRequest("POST", "missing", "")
	gc.Restart(ctx)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrGameNotFound, fasthttp.StatusNotFound},
		{engine.ErrNotPermitted, fasthttp.StatusForbidden},
		{engine.ErrWrongPhase, fasthttp.StatusConflict},
		{engine.ErrNotAuthority, fasthttp.StatusConflict},
		{services.ErrRateLimited, fasthttp.StatusTooManyRequests},
		{engine.ErrPrefixMismatch, fasthttp.StatusBadRequest},
		{engine.ErrOverBudget, fasthttp.StatusBadRequest},
		{services.ErrInvalidName, fasthttp.StatusBadRequest},
		{fmt.Errorf("voto: %w", engine.ErrSelfVote), fasthttp.StatusBadRequest},
		{context.DeadlineExceeded, fasthttp.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statusFor(c.err), c.err.Error())
	}
}

func TestContentHandler(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redis.NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	source := prompts.NewSource(prompts.Default(), 1)
	h := NewContentHandler(services.NewContentService(client, source, ""))

	ctx := newRequest("POST", "", "")
	h.Reload(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = newRequest("GET", "", "")
	h.GetMetadata(ctx)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.True(t, decode(t, ctx).Success)

	ctx = newRequest("GET", "", "")
	h.HealthCheck(ctx)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	mr.Close()
	ctx = newRequest("GET", "", "")
	h.HealthCheck(ctx)
	assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
}
