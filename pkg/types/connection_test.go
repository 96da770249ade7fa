package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/types"
)

func TestParseConnection(t *testing.T) {
	tests := []struct {
		in   string
		want types.ConnectionSpec
	}{
		{"", types.ConnectionSpec{}},
		{"web1", types.ConnectionSpec{Host: "web1"}},
		{"web1.local:2222", types.ConnectionSpec{Host: "web1.local", Port: 2222}},
		{"deploy@web1", types.ConnectionSpec{User: "deploy", Host: "web1"}},
		{"deploy@10.0.0.5:22", types.ConnectionSpec{User: "deploy", Host: "10.0.0.5", Port: 22}},
		{"_svc@my-host", types.ConnectionSpec{User: "_svc", Host: "my-host"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := types.ParseConnection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConnection_Invalid(t *testing.T) {
	for _, in := range []string{"@host", "user@", "host:", "host:123456", "host:0", "a b", "1user@host"} {
		t.Run(in, func(t *testing.T) {
			_, err := types.ParseConnection(in)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
		})
	}
}

func TestConnectionSpec_String(t *testing.T) {
	assert.Equal(t, "local", types.ConnectionSpec{}.String())
	assert.Equal(t, "web1", types.ConnectionSpec{Host: "web1"}.String())
	assert.Equal(t, "root@web1:22", types.ConnectionSpec{User: "root", Host: "web1", Port: 22}.String())
}

func TestEscalationSpec(t *testing.T) {
	assert.False(t, types.EscalationSpec{}.Requested())
	assert.True(t, types.EscalationSpec{User: "root"}.Requested())
}
