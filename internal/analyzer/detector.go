package analyzer

// Detector finds candidate object regions in a frame
type Detector interface {
	Detect(f *Frame) ([]*Region, error)
}

// Detect implements Detector
func (sc *Scanner) Detect(f *Frame) ([]*Region, error) {
	return sc.Scan(f)
}
