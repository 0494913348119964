package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		text     string
		wantCmd  string
		wantArgs []string
		wantOK   bool
	}{
		{"!учеба", "учеба", nil, true},
		{"!стрик", "стрик", nil, true},
		{"  !рига  ", "рига", nil, true},
		{"!отсыпать @vasya 100", "отсыпать", []string{"@vasya", "100"}, true},
		{".топ", "топ", nil, true},
		{"/login секрет", "login", []string{"секрет"}, true},
		{"/start@study_riga_bot", "start", nil, true},
		{"!УЧЕБА", "учеба", nil, true},
		{"просто текст", "", nil, false},
		{"", "", nil, false},
		{"!", "", nil, false},
		{"!   ", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
