package store

import (
	"testing"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"

	"github.com/itish2003/supportbot/models"
)

func TestMetadataToMap(t *testing.T) {
	meta := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute(models.MetaSource, "knowledge/faq.md"),
		chromago.NewStringAttribute(models.MetaTitle, "faq.md"),
	)

	got := metadataToMap(meta)
	assert.Equal(t, "knowledge/faq.md", got[models.MetaSource])
	assert.Equal(t, "faq.md", got[models.MetaTitle])
}

func TestMetadataToMap_Nil(t *testing.T) {
	got := metadataToMap(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
