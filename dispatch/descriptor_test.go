package dispatch

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	d := URL("http://example.com/a")

	assert.Equal(t, KindAddress, d.Kind())
	assert.Equal(t, "http://example.com/a", d.Address())
	assert.Equal(t, http.MethodGet, d.Method())
	assert.Equal(t, "GET http://example.com/a", d.String())
	assert.Empty(t, d.Options().Method)
}

func TestRequest_CopiesOptions(t *testing.T) {
	header := http.Header{"X-Trace": []string{"one"}}
	body := []byte(`{"k":"v"}`)

	d := Request("http://example.com/b", Options{Method: http.MethodPost, Header: header, Body: body})

	header.Set("X-Trace", "two")
	body[0] = 'X'

	opts := d.Options()
	assert.Equal(t, KindStructured, d.Kind())
	assert.Equal(t, http.MethodPost, d.Method())
	assert.Equal(t, "one", opts.Header.Get("X-Trace"))
	assert.Equal(t, `{"k":"v"}`, string(opts.Body))

	// Options 返回的也是副本
	opts.Header.Set("X-Trace", "three")
	assert.Equal(t, "one", d.Options().Header.Get("X-Trace"))
}

func TestDescriptor_Build(t *testing.T) {
	ctx := context.Background()

	t.Run("address sets default user agent", func(t *testing.T) {
		req, err := URL("http://example.com").build(ctx, "fetchup/test")
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "fetchup/test", req.Header.Get("User-Agent"))
		assert.Nil(t, req.Body)
	})

	t.Run("structured keeps caller headers and body", func(t *testing.T) {
		d := Request("http://example.com", Options{
			Method: http.MethodPut,
			Header: http.Header{"User-Agent": []string{"custom"}, "X-A": []string{"1", "2"}},
			Body:   []byte("payload"),
		})
		req, err := d.build(ctx, "fetchup/test")
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, req.Method)
		assert.Equal(t, "custom", req.Header.Get("User-Agent"))
		assert.Equal(t, []string{"1", "2"}, req.Header.Values("X-A"))
		data, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})

	t.Run("structured without method defaults to GET", func(t *testing.T) {
		req, err := Request("http://example.com", Options{}).build(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Empty(t, req.Header.Get("User-Agent"))
	})

	t.Run("zero descriptor is invalid", func(t *testing.T) {
		_, err := Descriptor{}.build(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidDescriptor)
		assert.Equal(t, "invalid", Descriptor{}.Kind().String())
	})

	t.Run("malformed address", func(t *testing.T) {
		_, err := URL("://bad").build(ctx, "")
		assert.Error(t, err)
	})
}

// 结构化描述中无法携带自己的上下文：构建出的请求始终绑定调用方传入的 ctx。
func TestProperty_DescriptorNormalization(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("structured descriptor normalizes method and binds ctx", prop.ForAll(
		func(method, path string) bool {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			req, err := Request("http://example.com/"+path, Options{Method: method}).build(ctx, "ua")
			if err != nil {
				return false
			}
			want := method
			if want == "" {
				want = http.MethodGet
			}
			return req.Method == want &&
				req.Context() == ctx &&
				req.URL.Path == "/"+path &&
				req.Header.Get("User-Agent") == "ua"
		},
		gen.OneConstOf("", http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}
