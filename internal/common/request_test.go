package common

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/citizenwallet/govdash/pkg/governance"
	"github.com/stretchr/testify/require"
)

func TestReadValuesJSON(t *testing.T) {
	body := `{"proposal_id":"93042758213468929873127937164127402011742113417052519290462734569312412366112","support":1,"targets":["0x01","0x02"],"wait":true}`

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	v, err := ReadValues(r)
	require.NoError(t, err)
	require.Equal(t, "93042758213468929873127937164127402011742113417052519290462734569312412366112", v.Get("proposal_id"))
	require.Equal(t, "1", v.Get("support"))
	require.Equal(t, []string{"0x01", "0x02"}, v["targets"])
	require.Equal(t, "true", v.Get("wait"))
}

func TestReadValuesForm(t *testing.T) {
	form := url.Values{"recipient": {"0x01"}, "amount": {"1.5"}}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	v, err := ReadValues(r)
	require.NoError(t, err)
	require.Equal(t, "1.5", v.Get("amount"))
}

func TestReadValuesInvalid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":{"b":1}}`))
	r.Header.Set("Content-Type", "application/json")

	_, err := ReadValues(r)
	require.ErrorIs(t, err, governance.ErrInvalidInput)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	r.Header.Set("Content-Type", "application/json")

	_, err = ReadValues(r)
	require.ErrorIs(t, err, governance.ErrInvalidInput)
}
