package orders

type Status int

const (
	StatusUnpaid     Status = 1
	StatusUnsend     Status = 2
	StatusUnreceived Status = 3
	StatusUncomment  Status = 4
	StatusFinished   Status = 5
	StatusCanceled   Status = 6
)

var statusNames = map[Status]string{
	StatusUnpaid:     "UNPAID",
	StatusUnsend:     "UNSEND",
	StatusUnreceived: "UNRECEIVED",
	StatusUncomment:  "UNCOMMENT",
	StatusFinished:   "FINISHED",
	StatusCanceled:   "CANCELED",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

type PayMethod int

const (
	PayCash   PayMethod = 1
	PayOnline PayMethod = 2
)

func (p PayMethod) Valid() bool { return p == PayCash || p == PayOnline }

// StatusFor returns the initial status of an order paid with p.
// Cash on delivery skips the payment step.
func StatusFor(p PayMethod) Status {
	if p == PayCash {
		return StatusUnsend
	}
	return StatusUnpaid
}
