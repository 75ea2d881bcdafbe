// Package divelog defines the structured dive record and the documents the
// processing pipeline leaves in the object store.
package divelog

// Record is the three-field metadata collected for a processing session.
// A zero-valued field means "not provided yet".
type Record struct {
	DiveDate     string `json:"dive_date,omitempty"`
	DiveNumber   *int   `json:"dive_number,omitempty"`
	DiveLocation string `json:"dive_location,omitempty"`
}

// Empty reports whether no field has been provided yet.
func (r Record) Empty() bool {
	return r.DiveDate == "" && r.DiveNumber == nil && r.DiveLocation == ""
}

// Complete reports whether all three fields are present.
func (r Record) Complete() bool {
	return r.DiveDate != "" && r.DiveNumber != nil && r.DiveLocation != ""
}

// Merge overlays the provided fields of other onto r and returns the result.
// Absent fields of other leave r's values untouched.
func (r Record) Merge(other Record) Record {
	if other.DiveDate != "" {
		r.DiveDate = other.DiveDate
	}
	if other.DiveNumber != nil {
		n := *other.DiveNumber
		r.DiveNumber = &n
	}
	if other.DiveLocation != "" {
		r.DiveLocation = other.DiveLocation
	}
	return r
}

// Metadata is the per-session document the pipeline writes when a video has
// been processed, later updated with the diver-provided record fields.
type Metadata struct {
	SessionID     string   `json:"session_id,omitempty"`
	VideoFilename string   `json:"video_filename,omitempty"`
	SourceKey     string   `json:"s3_key,omitempty"`
	DiveDate      string   `json:"dive_date,omitempty"`
	DiveNumber    *int     `json:"dive_number,omitempty"`
	DiveLocation  string   `json:"dive_location,omitempty"`
	FrameURLs     []string `json:"frame_urls,omitempty"`
	AnalysisURL   string   `json:"gpt_output_url,omitempty"`
}

// Record extracts the structured record portion of the metadata document.
func (m Metadata) Record() Record {
	return Record{
		DiveDate:     m.DiveDate,
		DiveNumber:   m.DiveNumber,
		DiveLocation: m.DiveLocation,
	}
}

// SetRecord overwrites the record portion of the metadata document.
func (m *Metadata) SetRecord(r Record) {
	m.DiveDate = r.DiveDate
	m.DiveNumber = r.DiveNumber
	m.DiveLocation = r.DiveLocation
}

// Analysis is the stored vision-model description of a session's footage.
type Analysis struct {
	Filename    string  `json:"filename,omitempty"`
	Animal      string  `json:"animal,omitempty"`
	Description string  `json:"description,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
}
