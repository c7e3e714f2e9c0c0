package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bobmcallan/risklens/internal/common"
	"github.com/bobmcallan/risklens/internal/models"
)

func newTestMiner() *TextMiner {
	return NewTextMiner(common.NewDefaultConfig().Risk)
}

func TestExtractPartners(t *testing.T) {
	m := newTestMiner()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple cooperation", "公司与阿里巴巴合作开发产品", []string{"阿里巴巴"}},
		{"investment verb", "本公司和腾讯控股投资建设数据中心", []string{"腾讯控股"}},
		{"multiple matches", "公司与阿里巴巴合作，并与字节跳动投资新项目", []string{"阿里巴巴", "字节跳动"}},
		{"no match", "公司主营白酒生产与销售业务", nil},
		{"empty", "", []string{}},
		{"none placeholder", "None", []string{}},
		{"punctuation breaks entity", "公司与，合作", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.ExtractPartners(tt.text)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractPartners_PreservesOrderAndDuplicates(t *testing.T) {
	m := newTestMiner()

	text := "公司与甲方合作。公司与甲方合作。"
	got := m.ExtractPartners(text)
	assert.Equal(t, []string{"甲方", "甲方"}, got)
}

func TestDetectInstitutionalHolders(t *testing.T) {
	m := newTestMiner()

	holders := []models.HolderRecord{
		{HolderName: "张三", HoldRatio: 1.2},
		{HolderName: "某某基金管理有限公司", HoldRatio: 5.5},
		{HolderName: "李四"},
		{HolderName: "华泰证券股份有限公司", HoldRatio: 2.1},
	}

	got := m.DetectInstitutionalHolders(holders)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "某某基金管理有限公司", got[0].HolderName)
		assert.Equal(t, "华泰证券股份有限公司", got[1].HolderName)
	}
}

func TestDetectInstitutionalHolders_EmptyInput(t *testing.T) {
	m := newTestMiner()

	assert.Empty(t, m.DetectInstitutionalHolders(nil))
	assert.Empty(t, m.DetectInstitutionalHolders([]models.HolderRecord{}))
}
