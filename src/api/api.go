package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cnaize/blgen/src/core/metrics"
	"github.com/cnaize/blgen/src/core/output"
	"github.com/cnaize/blgen/src/core/pipeline"
	"github.com/cnaize/blgen/src/types"
)

type Updater interface {
	Update(ctx context.Context) (pipeline.Result, error)
}

func Register(r *gin.Engine, blacklist *types.BlackList, updater Updater, opts output.Options) {
	// register prometheus metrics
	reg := prometheus.NewRegistry()
	metrics.Get().Register(reg)

	root := r.Group("/v1")
	root.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// register api endpoints
	root.GET("/blacklist", blacklistGet(blacklist, opts))
	root.GET("/status", blacklistStatus(blacklist))
	root.GET("/lookup/:ip", blacklistLookup(blacklist))
	root.POST("/refresh", blacklistRefresh(updater))
}
