package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("MELBA_TEST_KEY", "a=b")
	c := New()
	assert.Equal(t, "a=b", GetString(c, "MELBA_TEST_KEY", ""))
}

func TestGetters(t *testing.T) {
	c := map[string]string{
		"N":       "42",
		"BAD":     "x",
		"FLAG":    "true",
		"SECONDS": "5",
		"LIST":    " https://a.org, ,https://b.org ",
	}
	assert.Equal(t, 42, GetInt(c, "N", 0))
	assert.Equal(t, 7, GetInt(c, "BAD", 7))
	assert.True(t, GetBool(c, "FLAG", false))
	assert.True(t, GetBool(c, "MISSING", true))
	assert.Equal(t, 5*time.Second, GetSeconds(c, "SECONDS", time.Minute))
	assert.Equal(t, time.Minute, GetSeconds(c, "MISSING", time.Minute))
	assert.Equal(t, []string{"https://a.org", "https://b.org"}, GetList(c, "LIST"))
	assert.Equal(t, "d", GetString(nil, "X", "d"))
}

func TestFromMapDefaults(t *testing.T) {
	s, err := FromMap(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, "memory", s.DBType)
	assert.Equal(t, "log", s.Mail.Transport)
	assert.Equal(t, 15*time.Second, s.Mail.Timeout)
	assert.False(t, s.Mail.Secure)
	assert.Equal(t, 180*time.Second, s.ReadTimeout)
	assert.False(t, s.Production)
	assert.False(t, s.SMS.Enabled())
}

func TestFromMapOverrides(t *testing.T) {
	s, err := FromMap(map[string]string{
		"NODE_ENV":             "production",
		"DB_TYPE":              "postgres",
		"DATABASE_URL":         "postgres://localhost/melba",
		"MAIL_TIMEOUT_SECONDS": "3",
		"EMAIL_USER":           "office@melba.org",
		"EMAIL_SECURE":         "true",
		"UPLOAD_MAX_BYTES":     "1048576",
		"TWILIO_ACCOUNT_SID":   "AC1",
		"TWILIO_AUTH_TOKEN":    "tok",
		"TWILIO_FROM":          "+15550000000",
		"ADMIN_SMS_TO":         "+15551112222",
	})
	require.NoError(t, err)
	assert.True(t, s.Production)
	assert.Equal(t, 3*time.Second, s.Mail.Timeout)
	assert.Equal(t, "office@melba.org", s.Mail.ContactEmail)
	assert.Equal(t, "office@melba.org", s.Mail.From)
	assert.True(t, s.Mail.Secure)
	assert.Equal(t, int64(1<<20), s.Upload.MaxBytes)
	assert.True(t, s.SMS.Enabled())
}

func TestFromMapRejectsBadSettings(t *testing.T) {
	for name, c := range map[string]map[string]string{
		"unknown db":        {"DB_TYPE": "mongo"},
		"postgres no url":   {"DB_TYPE": "postgres"},
		"redis no url":      {"SESSION_STORE": "redis"},
		"unknown transport": {"MAIL_TRANSPORT": "pigeon"},
		"s3 no bucket":      {"UPLOAD_BACKEND": "s3"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromMap(c)
			assert.Error(t, err)
		})
	}
}

func TestSupabaseDSN(t *testing.T) {
	s := SupabaseSettings{Host: "db.supabase.co", User: "u", Password: "p", Name: "postgres", Port: "5432"}
	assert.Equal(t, "host=db.supabase.co user=u password=p dbname=postgres port=5432 sslmode=require", s.DSN())
}

type fakeParameters struct {
	pages []*ssm.GetParametersByPathOutput
	calls int
}

func (f *fakeParameters) GetParametersByPath(ctx context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestOverlaySSM(t *testing.T) {
	client := &fakeParameters{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []types.Parameter{{Name: aws.String("/melba/prod/ADMIN_PASSWORD"), Value: aws.String("from-ssm")}},
			NextToken:  aws.String("next"),
		},
		{
			Parameters: []types.Parameter{{Name: aws.String("/melba/prod/resend_api_key"), Value: aws.String("re_123")}},
		},
	}}

	c := map[string]string{"ADMIN_PASSWORD": "from-env", "PORT": "9000"}
	require.NoError(t, overlay(context.Background(), client, c, "/melba/prod"))

	assert.Equal(t, 2, client.calls)
	assert.Equal(t, "from-ssm", c["ADMIN_PASSWORD"])
	assert.Equal(t, "re_123", c["RESEND_API_KEY"])
	assert.Equal(t, "9000", c["PORT"])
}
