package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestCORS_PreflightShortCircuits(t *testing.T) {
	called := false
	h := CORS(nil)(func(ctx *fasthttp.RequestCtx) { called = true })

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodOptions)
	ctx.Request.Header.Set("Origin", "http://localhost:5173")
	h(&ctx)

	assert.False(t, called)
	assert.Equal(t, fasthttp.StatusNoContent, ctx.Response.StatusCode())
	assert.Equal(t, "http://localhost:5173", string(ctx.Response.Header.Peek("Access-Control-Allow-Origin")))
}

func TestCORS_UnlistedOriginGetsNoAllowHeader(t *testing.T) {
	h := CORS([]string{"http://board.local"})(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.Header.Set("Origin", "http://evil.local")
	h(&ctx)

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Empty(t, ctx.Response.Header.Peek("Access-Control-Allow-Origin"))
}

func TestAccessLog_PassesThrough(t *testing.T) {
	h := AccessLog(nil)(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusTeapot)
	})
	var ctx fasthttp.RequestCtx
	h(&ctx)
	assert.Equal(t, fasthttp.StatusTeapot, ctx.Response.StatusCode())
}
