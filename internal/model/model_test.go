package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "missions", (&MissionRow{}).TableName())
	assert.Equal(t, "document_meta", (&MetaRow{}).TableName())
}

func TestHeaderValue(t *testing.T) {
	header := HeaderValue()
	assert.Equal(t, "id,faction,title,reward,location,hook,created_at,updated_at,status,assigned_to,notes", header)
	assert.Len(t, strings.Split(header, ","), len(HeaderColumns))
}
