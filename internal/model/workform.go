package model

import "time"

// WorkForm is a fillable form template.
type WorkForm struct {
	Base
	Name        string `gorm:"size:256" json:"name"`
	Version     int    `json:"version"`
	Description string `gorm:"size:2048" json:"description"`

	// Associations
	Revisions []*WorkFormPDFRevision `gorm:"foreignKey:WorkFormID" json:"revisions,omitempty"`
}

// WorkFormPDFRevision is one published revision of a work form.
type WorkFormPDFRevision struct {
	Base
	Revision int `json:"revision"`

	WorkFormID *int64 `gorm:"index" json:"-"`

	// Associations
	WorkForm *WorkForm         `gorm:"foreignKey:WorkFormID" json:"workForm,omitempty"`
	PDFs     []*WorkFormPDFData `gorm:"foreignKey:RevisionID" json:"pdfs,omitempty"`
}

// FileMetadata describes a stored file.
type FileMetadata struct {
	Base
	FileName    string `gorm:"size:512" json:"fileName"`
	ContentType string `gorm:"size:128" json:"contentType"`
	Size        int64  `json:"size"`
	Checksum    string `gorm:"size:128" json:"checksum"`
}

// PMTask is a preventive-maintenance task scheduled against a device.
type PMTask struct {
	Base
	Name string     `gorm:"size:256" json:"name"`
	Due  *time.Time `json:"due"`

	DeviceID *int64 `gorm:"index" json:"-"`

	// Associations
	Device *Device           `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	PDFs   []*WorkFormPDFData `gorm:"foreignKey:TaskID" json:"pdfs,omitempty"`
}

// WorkFormPDFData is a PDF generated from a filled-in work form.
type WorkFormPDFData struct {
	Base
	Created  *time.Time `json:"created"`
	FileName string     `gorm:"size:512" json:"fileName"`

	CreatedByID *int64 `gorm:"index" json:"-"`
	FileID      *int64 `gorm:"index" json:"-"`
	RevisionID  *int64 `gorm:"index" json:"-"`
	TaskID      *int64 `gorm:"index" json:"-"`

	// Associations
	CreatedBy *User                `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	File      *FileMetadata        `gorm:"foreignKey:FileID" json:"file,omitempty"`
	Revision  *WorkFormPDFRevision `gorm:"foreignKey:RevisionID" json:"revision,omitempty"`
	Task      *PMTask              `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
