package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RonaldAllanRivera/ride-info/internal/querycount"
)

// QueryCountHeader reports how many store round trips served the request.
const QueryCountHeader = "X-Query-Count"

// QueryCount attaches a round-trip counter to every request context. When
// expose is set, the count is sent in the X-Query-Count response header.
func QueryCount(expose bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, counter := querycount.NewContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)

		if expose {
			c.Writer = &countingWriter{ResponseWriter: c.Writer, counter: counter}
		}
		c.Next()
	}
}

// countingWriter stamps the header just before the response header is sent.
type countingWriter struct {
	gin.ResponseWriter
	counter *querycount.Counter
	stamped bool
}

func (w *countingWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	w.Header().Set(QueryCountHeader, strconv.FormatInt(w.counter.Value(), 10))
}

func (w *countingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *countingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *countingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *countingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}
