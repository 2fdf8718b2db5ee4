package api

import (
	"bytes"
	"net/http"
	"net/netip"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cnaize/blgen/src/core/output"
	"github.com/cnaize/blgen/src/types"
)

func blacklistGet(list *types.BlackList, opts output.Options) func(*gin.Context) {
	return func(c *gin.Context) {
		if format := c.Query("format"); format != "" {
			mode, err := output.ParseMode(format)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			opts.Mode = mode
		}

		var buf bytes.Buffer
		if err := output.Render(&buf, list.Load(), opts); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
	}
}

func blacklistStatus(list *types.BlackList) func(*gin.Context) {
	type Out struct {
		Prefixes  int       `json:"prefixes"`
		Addresses uint64    `json:"addresses"`
		Updated   time.Time `json:"updated"`
	}

	return func(c *gin.Context) {
		set := list.Load()
		c.JSON(http.StatusOK, Out{
			Prefixes:  set.Len(),
			Addresses: set.Size(),
			Updated:   list.Updated(),
		})
	}
}

func blacklistLookup(list *types.BlackList) func(*gin.Context) {
	type Out struct {
		Found  bool   `json:"found"`
		Prefix string `json:"prefix,omitempty"`
	}

	return func(c *gin.Context) {
		addr, err := netip.ParseAddr(c.Param("ip"))
		if err != nil || !addr.Is4() {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}

		prefix, ok := list.LookupPrefix(addr)
		if !ok {
			c.JSON(http.StatusOK, Out{})
			return
		}

		c.JSON(http.StatusOK, Out{Found: true, Prefix: prefix.String()})
	}
}

func blacklistRefresh(updater Updater) func(*gin.Context) {
	type Out struct {
		Prefixes  int  `json:"prefixes"`
		Discarded int  `json:"discarded"`
		Failed    int  `json:"failed"`
		Partial   bool `json:"partial"`
	}

	return func(c *gin.Context) {
		res, err := updater.Update(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, Out{
			Prefixes:  res.Set.Len(),
			Discarded: res.Discarded(),
			Failed:    res.Failed(),
			Partial:   res.Partial(),
		})
	}
}
