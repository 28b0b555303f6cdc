package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestSender(baseURL string, timeout time.Duration) *HTTPSMSSender {
	return NewHTTPSMSSender(baseURL, "key", "PORTAL", "acct", "secret", timeout, zap.NewNop())
}

func TestHTTPSMSSender_Success(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/send", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("apikey"))
		assert.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"mobile":   r.PostFormValue("mobile"),
			"msg":      r.PostFormValue("msg"),
			"senderid": r.PostFormValue("senderid"),
		}
		w.Write([]byte(`{"status":"success","msgid":"gw-123"}`))
	}))
	defer srv.Close()

	sender := newTestSender(srv.URL, 2*time.Second)
	id, err := sender.Send(context.Background(), "+15551234567", "hello there")

	assert.NoError(t, err)
	assert.Equal(t, "gw-123", id)
	assert.Equal(t, "+15551234567", gotForm["mobile"])
	assert.Equal(t, "hello there", gotForm["msg"])
	assert.Equal(t, "PORTAL", gotForm["senderid"])
}

func TestHTTPSMSSender_TimeoutIsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"status":"success","msgid":"too-late"}`))
	}))
	defer srv.Close()

	sender := newTestSender(srv.URL, 50*time.Millisecond)
	_, err := sender.Send(context.Background(), "+15551234567", "hello")

	assert.ErrorIs(t, err, ErrGatewayTimeout)
}

func TestHTTPSMSSender_GatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","reason":"invalid sender id"}`))
	}))
	defer srv.Close()

	sender := newTestSender(srv.URL, 2*time.Second)
	_, err := sender.Send(context.Background(), "+15551234567", "hello")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrGatewayTimeout)
	assert.Contains(t, err.Error(), "invalid sender id")
}

func TestHTTPSMSSender_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := newTestSender(srv.URL, 2*time.Second)
	_, err := sender.Send(context.Background(), "+15551234567", "hello")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "***4567", maskPhone("+15551234567"))
	assert.Equal(t, "***", maskPhone("123"))
	assert.Equal(t, "[empty]", maskPhone(""))
}
