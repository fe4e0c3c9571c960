package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		modality   Modality
		specialty  string
		wantStatus Status
		wantCat    VisitCategory
	}{
		{
			name:       "remote general medicine is immediately scheduled",
			modality:   ModalityTelemedicina,
			specialty:  SpecialtyGeneralMedicine,
			wantStatus: StatusProgramada,
			wantCat:    CategoryGeneralConsult,
		},
		{
			name:       "in-person general medicine waits for confirmation",
			modality:   ModalityPresencial,
			specialty:  SpecialtyGeneralMedicine,
			wantStatus: StatusPendienteConfirmacion,
			wantCat:    CategoryGeneralConsult,
		},
		{
			name:       "remote specialist waits for confirmation",
			modality:   ModalityTelemedicina,
			specialty:  "Cardiología",
			wantStatus: StatusPendienteConfirmacion,
			wantCat:    CategorySpecialist,
		},
		{
			name:       "in-person specialist waits for confirmation",
			modality:   ModalityPresencial,
			specialty:  "Dermatología",
			wantStatus: StatusPendienteConfirmacion,
			wantCat:    CategorySpecialist,
		},
		{
			name:       "unknown specialty falls back to the confirmation path",
			modality:   ModalityTelemedicina,
			specialty:  "No Existe",
			wantStatus: StatusPendienteConfirmacion,
			wantCat:    CategorySpecialist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.modality, tt.specialty)
			assert.Equal(t, tt.wantStatus, got.InitialStatus)
			assert.Equal(t, tt.wantCat, got.Category)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := Classify(ModalityTelemedicina, SpecialtyGeneralMedicine)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Classify(ModalityTelemedicina, SpecialtyGeneralMedicine))
	}
}

func TestParseModality(t *testing.T) {
	m, err := ParseModality("Videollamada")
	assert.NoError(t, err)
	assert.Equal(t, ModalityTelemedicina, m)

	m, err = ParseModality("Presencial")
	assert.NoError(t, err)
	assert.Equal(t, ModalityPresencial, m)

	_, err = ParseModality("Telepatía")
	assert.ErrorIs(t, err, ErrUnknownModality)
}
