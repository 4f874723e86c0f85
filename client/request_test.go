package client_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-auth-client/client"
	"github.com/stretchr/testify/require"
)

func TestRequest_WithMethodsCopy(t *testing.T) {
	base := client.NewRequest(http.MethodGet, "/invoices").WithHeader("Accept", "application/json")

	withAuth := base.WithHeader("Authorization", "Bearer t")
	require.Empty(t, base.Header("Authorization"))
	require.Equal(t, "Bearer t", withAuth.Header("Authorization"))
	require.Equal(t, "application/json", withAuth.Header("Accept"))

	replaced := withAuth.WithHeader("Authorization", "Bearer u")
	require.Equal(t, []string{"Bearer u"}, replaced.HeaderValues("Authorization"))
	require.Equal(t, "Bearer t", withAuth.Header("Authorization"))

	without := replaced.WithoutHeader("Authorization")
	require.Empty(t, without.Header("Authorization"))

	paged := base.WithQuery("page", "2")
	require.Empty(t, base.Query())
	require.Equal(t, "2", paged.Query().Get("page"))
}

func TestRequest_AccessorsReturnCopies(t *testing.T) {
	req := client.NewRequest(http.MethodGet, "/x").WithHeader("A", "1").WithQuery("q", "v")

	h := req.Headers()
	h.Set("A", "changed")
	require.Equal(t, "1", req.Header("A"))

	q := req.Query()
	q.Set("q", "changed")
	require.Equal(t, "v", req.Query().Get("q"))
}

func TestRequest_BodyIsReplayable(t *testing.T) {
	payload := []byte(`{"a":1}`)
	req := client.NewRequest(http.MethodPost, "/x").WithBody(payload, "application/json")
	payload[0] = 'X'

	for i := 0; i < 2; i++ {
		data, err := io.ReadAll(req.Body())
		require.NoError(t, err)
		require.Equal(t, `{"a":1}`, string(data))
	}
	require.Equal(t, "application/json", req.Header("Content-Type"))
	require.EqualValues(t, 7, req.ContentLength())
	require.Nil(t, client.NewRequest(http.MethodGet, "/x").Body())
}

func TestRequest_WithJSON(t *testing.T) {
	req, err := client.NewRequest(http.MethodPost, "/auth/login").WithJSON(map[string]string{"email": "a@b.c"})
	require.NoError(t, err)
	data, err := io.ReadAll(req.Body())
	require.NoError(t, err)
	require.JSONEq(t, `{"email":"a@b.c"}`, string(data))

	_, err = client.NewRequest(http.MethodPost, "/x").WithJSON(make(chan int))
	require.Error(t, err)
}

func TestNewRequest_CanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                   "/",
		"/":                  "/",
		"customers":          "/customers",
		"//customers":        "/customers",
		"/./customers":       "/customers",
		"/a/../customers":    "/customers",
		"/customers/":        "/customers/",
		"customers//7/":      "/customers/7/",
		"/customers#section": "/customers",
	}
	for in, want := range cases {
		require.Equal(t, want, client.NewRequest(http.MethodGet, in).Path(), "input %q", in)
	}
}

func TestNewRequest_QueryInTarget(t *testing.T) {
	req := client.NewRequest(http.MethodGet, "/customers?page=2&tag=a&tag=b")
	require.Equal(t, "/customers", req.Path())
	require.Equal(t, "2", req.Query().Get("page"))
	require.Equal(t, []string{"a", "b"}, req.Query()["tag"])

	more := req.WithQuery("page", "3")
	require.Equal(t, []string{"2", "3"}, more.Query()["page"])
	require.Equal(t, []string{"2"}, req.Query()["page"])
}
