package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCookieCodecRoundTrip(t *testing.T) {
	codec := newCookieCodec("test-secret-key")

	sealed := codec.seal("session-1234")
	require.NotEqual(t, "session-1234", sealed)

	opened, err := codec.open(sealed)
	require.NoError(t, err)
	require.Equal(t, "session-1234", opened)
}

func TestCookieCodecSealIsRandomised(t *testing.T) {
	codec := newCookieCodec("test-secret-key")
	require.NotEqual(t, codec.seal("session-1234"), codec.seal("session-1234"))
}

func TestCookieCodecRejectsTamperedValue(t *testing.T) {
	codec := newCookieCodec("test-secret-key")

	sealed := codec.seal("session-1234")
	tampered := "A" + sealed[1:]
	if tampered == sealed {
		tampered = "B" + sealed[1:]
	}

	_, err := codec.open(tampered)
	require.Error(t, err)
}

func TestCookieCodecRejectsOtherKey(t *testing.T) {
	sealed := newCookieCodec("test-secret-key").seal("session-1234")

	_, err := newCookieCodec("another-secret-key").open(sealed)
	require.Error(t, err)
}

func TestCookieCodecRejectsGarbage(t *testing.T) {
	codec := newCookieCodec("test-secret-key")

	_, err := codec.open("not base64 at all!!!")
	require.Error(t, err)

	_, err = codec.open("c2hvcnQ")
	require.Error(t, err)
}

func TestProxyHandlerWithoutRouteConfiguration(t *testing.T) {
	s := &Server{proxyRoutes: nil}

	w := httptest.NewRecorder()
	s.ProxyHandler("ghost")(w, httptest.NewRequest(http.MethodGet, "/ghost/bla", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Empty(t, w.Body.String())
}
