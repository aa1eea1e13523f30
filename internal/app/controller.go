// Package app holds the application state and the operations the CLI and
// dashboard perform on it. There is no global state: every component gets
// the Controller it works with.
package app

import (
	"context"
	"strings"
	"sync"

	"github.com/renalog/renalog/internal/clinical"
	"github.com/renalog/renalog/internal/errors"
	"github.com/renalog/renalog/internal/logging"
	"github.com/renalog/renalog/internal/model"
	"github.com/renalog/renalog/internal/parser"
	"github.com/renalog/renalog/internal/scheduler"
	"github.com/renalog/renalog/internal/storage"
	"github.com/renalog/renalog/internal/validate"
)

// Gateway is the AI service used for summaries and transcription.
type Gateway interface {
	Summarize(ctx context.Context, records []*model.HealthRecord, profile *model.PatientProfile) string
	Transcribe(ctx context.Context, audio []byte, mimeType string) string
}

// State is a snapshot of everything the user has stored.
type State struct {
	Records     []*model.HealthRecord
	Medications []*model.Medication
	Profile     model.PatientProfile
	Permission  model.Permission
	// Skipped lists keys whose stored values could not be read.
	Skipped []string
}

// Assessment is the clinical evaluation of one record.
type Assessment struct {
	Fluid    clinical.FluidAssessment
	Pressure *clinical.BPStatus
	AgeHint  string
}

// HasFindings reports whether any warning or danger is active.
func (a Assessment) HasFindings() bool {
	return a.Fluid.Warning || a.Pressure != nil
}

// Controller owns the application state and persists every change.
type Controller struct {
	records  *storage.RecordRepo
	meds     *storage.MedicationRepo
	profiles *storage.ProfileRepo
	perms    *storage.PermissionRepo
	ai       Gateway
	clock    scheduler.Clock

	mu    sync.RWMutex
	state State
}

// New creates a controller over db. A nil clock uses the system clock.
func New(db *storage.DB, ai Gateway, clock scheduler.Clock) *Controller {
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	return &Controller{
		records:  storage.NewRecordRepo(db),
		meds:     storage.NewMedicationRepo(db),
		profiles: storage.NewProfileRepo(db),
		perms:    storage.NewPermissionRepo(db),
		ai:       ai,
		clock:    clock,
		state:    State{Permission: model.PermissionUnrequested},
	}
}

// Load reads all stored state. Unreadable entries are skipped and listed in
// State.Skipped rather than failing the load.
func (c *Controller) Load() error {
	records, skippedRecords, err := c.records.List()
	if err != nil {
		return errors.NewSystemErrorWithOp("load_records", "cannot read records", err)
	}
	meds, skippedMeds, err := c.meds.List()
	if err != nil {
		return errors.NewSystemErrorWithOp("load_medications", "cannot read medications", err)
	}
	profile, corrupt, err := c.profiles.Get()
	if err != nil {
		return errors.NewSystemErrorWithOp("load_profile", "cannot read profile", err)
	}
	perm, err := c.perms.Permission()
	if err != nil {
		return errors.NewSystemErrorWithOp("load_permission", "cannot read notification permission", err)
	}

	skipped := append(skippedRecords, skippedMeds...)
	if corrupt {
		skipped = append(skipped, model.KeyProfile)
	}
	for _, key := range skipped {
		logging.Warn("skipping unreadable entry", "key", key)
	}

	c.mu.Lock()
	c.state = State{
		Records:     records,
		Medications: meds,
		Profile:     *profile,
		Permission:  perm,
		Skipped:     skipped,
	}
	c.mu.Unlock()
	return nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := State{
		Profile:    c.state.Profile,
		Permission: c.state.Permission,
		Skipped:    append([]string(nil), c.state.Skipped...),
	}
	out.Records = make([]*model.HealthRecord, len(c.state.Records))
	for i, r := range c.state.Records {
		cp := *r
		out.Records[i] = &cp
	}
	out.Medications = copyMeds(c.state.Medications)
	return out
}

// Today returns the current calendar day as YYYY-MM-DD.
func (c *Controller) Today() string {
	return model.Day(c.clock.Now())
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// RecordInput is a record as entered by the user. All fields are raw text.
type RecordInput struct {
	Date          string
	Weight        string
	DryWeight     string
	FluidRemoval  string
	BloodPressure string
	Notes         string
}

// AddRecord validates, stores and evaluates a new record.
func (c *Controller) AddRecord(in RecordInput) (*model.HealthRecord, Assessment, error) {
	now := c.clock.Now()

	date, err := parser.ParseDate("date", in.Date, now)
	if err != nil {
		return nil, Assessment{}, parser.AsUserError(err)
	}
	weight, err := parser.ParsePositive("weight", in.Weight)
	if err != nil {
		return nil, Assessment{}, parser.AsUserError(err)
	}
	dry, err := parser.ParsePositive("dry weight", in.DryWeight)
	if err != nil {
		return nil, Assessment{}, parser.AsUserError(err)
	}
	fluid, err := parser.ParseOptionalNonNegative("fluid removal", in.FluidRemoval)
	if err != nil {
		return nil, Assessment{}, parser.AsUserError(err)
	}

	var sys, dia int
	if strings.TrimSpace(in.BloodPressure) != "" {
		sys, dia, err = parser.ParsePressure(in.BloodPressure)
		if err != nil {
			return nil, Assessment{}, parser.AsUserError(err)
		}
	}

	notes := validate.SanitizeNote(in.Notes)
	if err := validate.Note(notes); err != nil {
		return nil, Assessment{}, err
	}

	record := &model.HealthRecord{
		Date:         date,
		Weight:       weight,
		DryWeight:    dry,
		FluidRemoval: fluid,
		Systolic:     sys,
		Diastolic:    dia,
		Notes:        notes,
		CreatedAt:    now,
	}
	if err := c.records.Create(record); err != nil {
		return nil, Assessment{}, errors.NewSystemErrorWithOp("add_record", "cannot save record", err)
	}

	c.mu.Lock()
	c.state.Records = append(c.state.Records, record)
	model.SortRecords(c.state.Records)
	c.mu.Unlock()

	logging.DebugLog("record added", logging.KeyRecord, record.ShortID())

	cp := *record
	return &cp, c.Assess(record), nil
}

// Assess evaluates record against the clinical thresholds using the
// profile's age.
func (c *Controller) Assess(record *model.HealthRecord) Assessment {
	c.mu.RLock()
	age := c.state.Profile.Age
	c.mu.RUnlock()

	sys, dia := record.Pressure()
	a := Assessment{
		Fluid:    clinical.CheckFluidRemoval(record.DryWeight, record.FluidRemoval),
		Pressure: clinical.EvaluateBloodPressure(sys, dia, age),
	}
	if sys != nil {
		a.AgeHint = clinical.AgeHint(age)
	}
	return a
}

// LatestRecord returns the most recent record, or nil.
func (c *Controller) LatestRecord() *model.HealthRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.state.Records) == 0 {
		return nil
	}
	cp := *c.state.Records[len(c.state.Records)-1]
	return &cp
}

// ---------------------------------------------------------------------------
// Medications
// ---------------------------------------------------------------------------

// MedicationInput is a medication as entered by the user.
type MedicationInput struct {
	Name         string
	Dosage       string
	Frequency    string
	ReminderTime string
}

// AddMedication validates and stores a new medication.
func (c *Controller) AddMedication(in MedicationInput) (*model.Medication, error) {
	name := validate.SanitizeText(in.Name)
	if err := validate.MedicationName(name); err != nil {
		return nil, err
	}
	dosage := validate.SanitizeText(in.Dosage)
	if err := validate.Dosage(dosage); err != nil {
		return nil, err
	}
	freq := validate.SanitizeText(in.Frequency)
	if err := validate.Frequency(freq); err != nil {
		return nil, err
	}
	reminder, err := parser.ParseOptionalClock(in.ReminderTime)
	if err != nil {
		return nil, parser.AsUserError(err)
	}

	med := &model.Medication{
		Name:         name,
		Dosage:       dosage,
		Frequency:    freq,
		ReminderTime: reminder,
	}
	if err := c.meds.Create(med); err != nil {
		return nil, errors.NewSystemErrorWithOp("add_medication", "cannot save medication", err)
	}

	c.mu.Lock()
	c.state.Medications = append(c.state.Medications, med)
	storage.SortMedications(c.state.Medications)
	c.mu.Unlock()

	cp := *med
	return &cp, nil
}

// FindMedication resolves a full or partial medication ID.
func (c *Controller) FindMedication(id string) (*model.Medication, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, err := storage.FindByIDPrefix(c.state.Medications, id)
	if err != nil {
		return nil, medicationLookupError(id, err)
	}
	cp := *m
	return &cp, nil
}

// ToggleTaken flips whether the medication was taken today and returns the
// updated medication.
func (c *Controller) ToggleTaken(id string) (*model.Medication, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := storage.FindByIDPrefix(c.state.Medications, id)
	if err != nil {
		return nil, medicationLookupError(id, err)
	}

	updated := *m
	updated.ToggleTaken(model.Day(c.clock.Now()))
	if err := c.meds.Update(&updated); err != nil {
		return nil, errors.NewSystemErrorWithOp("toggle_taken", "cannot update medication", err)
	}
	*m = updated

	cp := updated
	return &cp, nil
}

// RemoveMedication deletes a medication and returns what was removed.
func (c *Controller) RemoveMedication(id string) (*model.Medication, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := storage.FindByIDPrefix(c.state.Medications, id)
	if err != nil {
		return nil, medicationLookupError(id, err)
	}
	if err := c.meds.Delete(m.Key); err != nil {
		return nil, errors.NewSystemErrorWithOp("remove_medication", "cannot delete medication", err)
	}

	kept := c.state.Medications[:0]
	for _, other := range c.state.Medications {
		if other.Key != m.Key {
			kept = append(kept, other)
		}
	}
	c.state.Medications = kept

	return m, nil
}

// ListMedications returns copies of the current medications. It lets the
// controller feed an in-process reminder scheduler.
func (c *Controller) ListMedications() ([]*model.Medication, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyMeds(c.state.Medications), nil
}

// IsTakenToday reports whether m was marked taken on the current day.
func (c *Controller) IsTakenToday(m *model.Medication) bool {
	return m.IsTakenOn(c.Today())
}

func copyMeds(meds []*model.Medication) []*model.Medication {
	out := make([]*model.Medication, len(meds))
	for i, m := range meds {
		cp := *m
		out[i] = &cp
	}
	return out
}

func medicationLookupError(id string, err error) error {
	if errors.Is(err, errors.ErrAmbiguousID) {
		return errors.NewUserErrorWithField("id", id,
			"More than one medication matches", errors.GetSuggestion(err)).WithCause(err)
	}
	return errors.NewUserErrorWithField("id", id,
		"No medication with that ID", errors.GetSuggestion(err)).WithCause(err)
}

// ---------------------------------------------------------------------------
// Profile and permission
// ---------------------------------------------------------------------------

// ProfileInput is the profile as entered by the user. StartDate and Months
// are alternatives; at most one may be given.
type ProfileInput struct {
	Name      string
	Age       string
	StartDate string
	Months    string
}

// SaveProfile validates and replaces the stored profile.
func (c *Controller) SaveProfile(in ProfileInput) (*model.PatientProfile, error) {
	now := c.clock.Now()

	name := validate.SanitizeText(in.Name)
	if err := validate.PatientName(name); err != nil {
		return nil, err
	}

	profile := &model.PatientProfile{Name: name}

	if strings.TrimSpace(in.Age) != "" {
		age, err := parser.ParsePositiveInt("age", in.Age)
		if err != nil {
			return nil, parser.AsUserError(err)
		}
		if err := validate.Age(age); err != nil {
			return nil, err
		}
		profile.Age = age
	}

	start := strings.TrimSpace(in.StartDate)
	months := strings.TrimSpace(in.Months)
	switch {
	case start != "" && months != "":
		return nil, errors.NewUserError(
			"Give either a start date or a number of months, not both",
			"Use --start for a known start date, or --months if you only know the duration")
	case start != "":
		day, err := parser.ParseDate("start date", start, now)
		if err != nil {
			return nil, parser.AsUserError(err)
		}
		profile.Treatment = model.StartedOn(day)
	case months != "":
		n, err := parser.ParseNonNegativeInt("months", months)
		if err != nil {
			return nil, parser.AsUserError(err)
		}
		profile.Treatment = model.TreatedFor(n)
	}

	if err := c.profiles.Save(profile); err != nil {
		return nil, errors.NewSystemErrorWithOp("save_profile", "cannot save profile", err)
	}

	c.mu.Lock()
	c.state.Profile = *profile
	c.mu.Unlock()

	cp := *profile
	return &cp, nil
}

// MonthsOnTreatment resolves the profile's treatment duration as of now.
// ok is false when none was entered.
func (c *Controller) MonthsOnTreatment() (months int, ok bool, err error) {
	c.mu.RLock()
	profile := c.state.Profile
	c.mu.RUnlock()
	return profile.MonthsOnTreatment(c.clock.Now())
}

// SetPermission stores the notification permission.
func (c *Controller) SetPermission(p model.Permission) error {
	if !p.IsValid() {
		return errors.NewUserErrorWithField("permission", string(p),
			"Unknown permission state", errors.GetSuggestion(errors.ErrInvalidPermission)).
			WithCause(errors.ErrInvalidPermission)
	}
	if err := c.perms.SetPermission(p); err != nil {
		return errors.NewSystemErrorWithOp("set_permission", "cannot save permission", err)
	}

	c.mu.Lock()
	c.state.Permission = p
	c.mu.Unlock()
	return nil
}

// Permission returns the current notification permission.
func (c *Controller) Permission() (model.Permission, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Permission, nil
}

// ---------------------------------------------------------------------------
// AI
// ---------------------------------------------------------------------------

// Summarize asks the AI gateway for a summary of all records. It never
// fails; the gateway supplies a fallback text.
func (c *Controller) Summarize(ctx context.Context) string {
	st := c.State()
	return c.ai.Summarize(ctx, st.Records, &st.Profile)
}

// Transcribe asks the AI gateway to transcribe a voice note. It returns ""
// on any failure.
func (c *Controller) Transcribe(ctx context.Context, audio []byte, mimeType string) string {
	return c.ai.Transcribe(ctx, audio, mimeType)
}
