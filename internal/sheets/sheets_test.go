package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Veraticus/etfsave/internal/common"
	"github.com/Veraticus/etfsave/internal/model"
	"github.com/Veraticus/etfsave/internal/testutil"
)

func testConfig() Config {
	c := DefaultConfig()
	c.SpreadsheetID = "sheet-id"
	c.ServiceAccountPath = "/path/to/key.json"
	return c
}

func TestReader_Entries(t *testing.T) {
	values := NewMockValues()
	values.SetSheet(DefaultManageSheet, [][]any{
		{"구분", "종목코드", "종목명", "표준코드", "펀드명"},
		{"해외주식형", 360750.0, "TIGER 미국S&P500", "KR7360750004", "미래에셋 TIGER 미국S&P500"},
		{"국내주식형", "", "KODEX 200", "KR7069500007"},
	})

	entries, err := NewReader(values, testConfig(), nil).Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "360750", entries[0].TickerCode)
	assert.Equal(t, "미래에셋 TIGER 미국S&P500", entries[0].FundName)
	assert.Equal(t, "069500", entries[1].TickerCode)
}

func TestReader_EntriesError(t *testing.T) {
	values := NewMockValues()
	values.GetErr = errors.New("googleapi: Error 403: The caller does not have permission")

	_, err := NewReader(values, testConfig(), nil).Entries(context.Background())
	assert.ErrorIs(t, err, common.ErrMissingSource)
}

func TestSheetRange(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "관리", want: "'관리'!A:Z"},
		{title: "Fund's list", want: "'Fund''s list'!A:Z"},
		{title: "''", want: "!A:Z"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := sheetRange(tt.title)
			assert.Equal(t, tt.want, got)

			title, cell, err := splitRange(got)
			require.NoError(t, err)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, "A:Z", cell)
		})
	}
}

func TestReader_EntriesQuotedTitle(t *testing.T) {
	values := NewMockValues()
	values.SetSheet("Kim's picks", [][]any{
		{"종목코드", "종목명", "표준코드"},
		{"069500", "KODEX 200", "KR7069500007"},
	})

	config := testConfig()
	config.ManageSheet = "Kim's picks"

	entries, err := NewReader(values, config, nil).Entries(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "KR7069500007", entries[0].StandardCode)
}

func TestWriter_Forward(t *testing.T) {
	values := NewMockValues()
	values.SetSheet(DefaultResultSheet, [][]any{{"stale"}, {"stale"}, {"stale"}, {"stale"}})

	config := testConfig()
	config.BatchSize = 2

	records := []model.OutputRecord{
		testutil.Record("360750", "TIGER 미국S&P500", 0.07, 0.0123, 0.002, 0.0843),
		testutil.Record("379800", "KODEX 미국S&P500", 0.0099, 0.01, 0.001, 0.0209),
	}
	require.NoError(t, NewWriter(values, config, nil).Forward(context.Background(), records))

	rows := values.Sheet(DefaultResultSheet)
	require.Len(t, rows, 3)
	assert.Equal(t, resultHeaders, rows[0])
	assert.Equal(t, []any{"해외주식형", "360750", "TIGER 미국S&P500", 0.07, 0.0123, 0.002, 0.0843}, rows[1])
	assert.Equal(t, []string{"'수수료결과'!A1", "'수수료결과'!A3"}, values.UpdateCalls)
	assert.Equal(t, 1, values.FormatCalls)
}

func TestWriter_ForwardErrors(t *testing.T) {
	records := []model.OutputRecord{testutil.Record("A", "a", 1, 0, 0, 1)}

	values := NewMockValues()
	values.UpdateErr = errors.New("quota exceeded")
	err := NewWriter(values, testConfig(), nil).Forward(context.Background(), records)
	assert.ErrorIs(t, err, common.ErrForwarding)

	values = NewMockValues()
	values.ClearErr = errors.New("not found")
	err = NewWriter(values, testConfig(), nil).Forward(context.Background(), records)
	assert.ErrorIs(t, err, common.ErrForwarding)

	values = NewMockValues()
	values.FormatErr = errors.New("sheet missing")
	assert.NoError(t, NewWriter(values, testConfig(), nil).Forward(context.Background(), records))

	values = NewMockValues()
	assert.NoError(t, NewWriter(values, testConfig(), nil).Forward(context.Background(), nil))
	assert.Empty(t, values.UpdateCalls)
}

func TestAuthenticateOAuth2Interactive(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"access_token":"access","refresh_token":"refresh","token_type":"Bearer","expires_in":3600}`)
	}))
	defer tokenServer.Close()

	config := OAuth2Config{
		ClientID:     "client",
		ClientSecret: "secret",
		ListenAddr:   "127.0.0.1:0",
		Timeout:      5 * time.Second,
		Endpoint:     &oauth2.Endpoint{AuthURL: "https://accounts.example/auth", TokenURL: tokenServer.URL},
	}

	showURL := func(consent string) {
		u, err := url.Parse(consent)
		if !assert.NoError(t, err) {
			return
		}
		q := u.Query()
		callback := q.Get("redirect_uri") + "?code=the-code&state=" + url.QueryEscape(q.Get("state"))
		go func() {
			resp, err := http.Get(callback) //nolint:noctx // test callback
			if err == nil {
				_ = resp.Body.Close()
			}
		}()
	}

	token, err := AuthenticateOAuth2Interactive(context.Background(), config, showURL)
	require.NoError(t, err)
	assert.Equal(t, "refresh", token.RefreshToken)
}

func TestAuthenticateOAuth2Interactive_MissingCredentials(t *testing.T) {
	_, err := AuthenticateOAuth2Interactive(context.Background(), OAuth2Config{}, func(string) {})
	assert.Error(t, err)
}
