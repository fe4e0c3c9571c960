package appointment

// VisitCategory partitions visits into general medicine and specialist care.
type VisitCategory string

const (
	CategoryGeneralConsult VisitCategory = "GeneralConsult"
	CategorySpecialist     VisitCategory = "Specialist"
)

type Intake struct {
	InitialStatus Status
	Category      VisitCategory
}

// Classify computes the initial status for a new booking. Only a remote
// general-medicine visit starts out Programada (attendable immediately);
// every other combination waits for front-desk confirmation.
//
// A specialty the system does not recognize is treated as non-general, so it
// lands on the confirmation path. Product has not decided whether that
// fallback should instead reject the booking; keep the behavior as is.
func Classify(modality Modality, specialty string) Intake {
	category := CategorySpecialist
	if specialty == SpecialtyGeneralMedicine {
		category = CategoryGeneralConsult
	}

	status := StatusPendienteConfirmacion
	if modality == ModalityTelemedicina && category == CategoryGeneralConsult {
		status = StatusProgramada
	}

	return Intake{InitialStatus: status, Category: category}
}
