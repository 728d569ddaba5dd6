package worker

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/verimetr/verimetr-api/internal/domain"
)

type RenderTestSuite struct {
	suite.Suite
}

func TestRender(t *testing.T) {
	suite.Run(t, new(RenderTestSuite))
}

func (s *RenderTestSuite) TestRegistryReport_FieldsWithDelimitersStayIntact() {
	date := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	entries := []domain.VerificationEntry{
		{
			ID:               "v1",
			EquipmentType:    "Manometer, class 0.4",
			SerialNumber:     "SN-\"42\"",
			RegistryNumber:   "12345-10",
			ActSeries:        "AB",
			ActNumber:        "007",
			VerificationDate: date,
			Suitable:         true,
		},
	}

	report := renderRegistryReport(entries)

	records, err := csv.NewReader(bytes.NewReader(report)).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 2)

	s.Equal([]string{"id", "equipment_type", "serial_number", "registry_number", "act", "verification_date", "suitable"}, records[0])
	s.Equal("Manometer, class 0.4", records[1][1])
	s.Equal(`SN-"42"`, records[1][2])
	s.Equal("AB 007", records[1][4])
	s.Equal("2026-03-14", records[1][5])
	s.Equal("true", records[1][6])
}

func (s *RenderTestSuite) TestRegistryReport_EmptyPeriodStillHasHeader() {
	report := renderRegistryReport(nil)

	records, err := csv.NewReader(bytes.NewReader(report)).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(records, 1)
}

func (s *RenderTestSuite) TestProtocol_CarriesEquipmentAndActDetails() {
	entry := &domain.VerificationEntry{
		ID:               "v1",
		EquipmentType:    "Thermometer",
		SerialNumber:     "T-100",
		RegistryNumber:   "55555-20",
		ActSeries:        "CD",
		ActNumber:        "314",
		VerificationDate: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		Suitable:         false,
	}

	document := string(renderProtocol(entry))

	s.Contains(document, "Verification protocol v1")
	s.Contains(document, "Thermometer")
	s.Contains(document, "CD 314")
	s.Contains(document, "2026-01-02")
	s.Contains(document, "Suitable: false")
}
