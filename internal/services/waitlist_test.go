package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/ceustudio-backend/internal/platform/airtable"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

func validWaitlistInput() WaitlistInput {
	return WaitlistInput{FirstName: "Grace", LastName: "Hopper", Company: "Navy", Email: "Grace@Example.com"}
}

func TestWaitlistRequiredFields(t *testing.T) {
	ws := NewWaitlistService(logger.NewNop(), &fakeAirtable{})
	cases := []struct {
		mutate func(*WaitlistInput)
		want   string
	}{
		{func(in *WaitlistInput) { in.FirstName = "" }, "firstName is required"},
		{func(in *WaitlistInput) { in.LastName = "   " }, "lastName is required"},
		{func(in *WaitlistInput) { in.Company = "" }, "company is required"},
		{func(in *WaitlistInput) { in.Email = "" }, "email is required"},
		{func(in *WaitlistInput) { in.Email = "grace@example" }, "Valid email required"},
		{func(in *WaitlistInput) { in.Email = "grace hopper@example.com" }, "Valid email required"},
	}
	for _, tc := range cases {
		in := validWaitlistInput()
		tc.mutate(&in)
		err := ws.Join(context.Background(), in)
		require.Error(t, err)
		ae := apierr.As(err)
		assert.Equal(t, http.StatusBadRequest, ae.Status)
		assert.Equal(t, tc.want, ae.Error())
	}
}

func TestWaitlistCreatesRecord(t *testing.T) {
	at := &fakeAirtable{}
	ws := NewWaitlistService(logger.NewNop(), at)

	require.NoError(t, ws.Join(context.Background(), validWaitlistInput()))

	assert.Equal(t, "LOWER({Email})='grace@example.com'", at.lastList.FilterByFormula)
	require.Len(t, at.created, 1)
	assert.Equal(t, map[string]any{
		"FirstName": "Grace",
		"LastName":  "Hopper",
		"Company":   "Navy",
		"Role":      "Architect",
		"Email":     "Grace@Example.com",
		"Source":    "MR CEU Studio",
	}, at.created[0])
}

func TestWaitlistKeepsGivenRole(t *testing.T) {
	at := &fakeAirtable{}
	ws := NewWaitlistService(logger.NewNop(), at)
	in := validWaitlistInput()
	in.Role = "Interior Designer"
	require.NoError(t, ws.Join(context.Background(), in))
	assert.Equal(t, "Interior Designer", at.created[0]["Role"])
}

func TestWaitlistDuplicate(t *testing.T) {
	at := &fakeAirtable{existing: []airtable.Record{{ID: "rec1"}}}
	ws := NewWaitlistService(logger.NewNop(), at)

	err := ws.Join(context.Background(), validWaitlistInput())
	ae := apierr.As(err)
	assert.Equal(t, http.StatusConflict, ae.Status)
	assert.Equal(t, "Already on waitlist", ae.Error())
	assert.Empty(t, at.created)
}

func TestWaitlistUpstreamStatusPassesThrough(t *testing.T) {
	at := &fakeAirtable{listErr: &airtable.StatusError{Status: http.StatusForbidden, Body: "nope"}}
	ws := NewWaitlistService(logger.NewNop(), at)
	ae := apierr.As(ws.Join(context.Background(), validWaitlistInput()))
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.Equal(t, "Airtable error", ae.Error())

	at = &fakeAirtable{createErr: &airtable.StatusError{Status: http.StatusUnprocessableEntity, Body: `{"error":"INVALID"}`}}
	ws = NewWaitlistService(logger.NewNop(), at)
	ae = apierr.As(ws.Join(context.Background(), validWaitlistInput()))
	assert.Equal(t, http.StatusUnprocessableEntity, ae.Status)
	assert.Equal(t, `{"error":"INVALID"}`, ae.Error())
}

func TestWaitlistTransportFailureIs500(t *testing.T) {
	ws := NewWaitlistService(logger.NewNop(), &fakeAirtable{listErr: errBoom})
	assert.Equal(t, http.StatusInternalServerError, apierr.As(ws.Join(context.Background(), validWaitlistInput())).Status)
}

func TestWaitlistNotConfigured(t *testing.T) {
	ws := NewWaitlistService(logger.NewNop(), nil)
	ae := apierr.As(ws.Join(context.Background(), validWaitlistInput()))
	assert.Equal(t, http.StatusInternalServerError, ae.Status)
	assert.Equal(t, "Missing AIRTABLE_BASE_ID or AIRTABLE_TOKEN", ae.Error())
}
