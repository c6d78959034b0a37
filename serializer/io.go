package serializer

import (
	"github.com/joshuapare/serialbox/archive"
	"github.com/joshuapare/serialbox/errs"
	"github.com/joshuapare/serialbox/field"
	"github.com/joshuapare/serialbox/logging"
	"github.com/joshuapare/serialbox/savepoint"
	"github.com/joshuapare/serialbox/storageview"
)

// RegisterField adds fieldName to the catalog with the given schema, or
// idempotently extends an existing matching entry. Returns
// whether a new entry was created.
func (s *Serializer) RegisterField(fieldName string, info *field.MetaInfo) (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return false, errs.New(errs.SerializerClosed, "serializer is closed")
	}
	return s.fields.RegisterField(fieldName, info)
}

// RegisterSavepoint adds sp to the catalog. Re-registering an equal
// savepoint is a no-op, not an error: the Serializer absorbs
// SavepointAlreadyExists the same way FieldMap absorbs a matching
// re-registration.
func (s *Serializer) RegisterSavepoint(sp *savepoint.Savepoint) (created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return false, errs.New(errs.SerializerClosed, "serializer is closed")
	}
	if _, err := s.savepoints.Insert(sp); err != nil {
		if errs.Is(err, errs.SavepointAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// HasSavepoint reports whether an equal savepoint is already registered.
func (s *Serializer) HasSavepoint(sp *savepoint.Savepoint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savepoints.Has(sp)
}

// FieldInfo returns the registered schema for fieldName.
func (s *Serializer) FieldInfo(fieldName string) (*field.MetaInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.FindField(fieldName)
}

// Fields returns the names of every registered field, in registration
// order.
func (s *Serializer) Fields() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields.Names()
}

// Savepoints returns the registered savepoints, in registration order.
func (s *Serializer) Savepoints() []*savepoint.Savepoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*savepoint.Savepoint, 0, s.savepoints.Len())
	s.savepoints.Enumerate(func(sp *savepoint.Savepoint) {
		out = append(out, sp)
	})
	return out
}

func (s *Serializer) checkShape(fieldName string, view storageview.View) (*field.MetaInfo, error) {
	info, err := s.fields.FindField(fieldName)
	if err != nil {
		return nil, err
	}
	if view.Type != info.Type {
		return nil, errs.Newf(errs.TypeMismatch, "field %q is %s, view is %s", fieldName, info.Type, view.Type).WithField(fieldName)
	}
	want := storageview.View{Dims: info.Dims}
	if !view.SameDims(want) {
		return nil, errs.Newf(errs.DimensionMismatch, "field %q has dims %v, view has dims %v", fieldName, info.Dims, view.Dims).WithField(fieldName)
	}
	return info, nil
}

// Write persists view under (fieldName, sp), implementing the write
// protocol: validate schema, provisionally claim a savepoint/field
// cell, hand bytes to the archive, then durably flush the catalog. Any
// failure after the provisional claim rolls the claim back so a retry
// sees a clean state. A no-op, returning nil, when the process-wide
// SerializationEnabled toggle is off.
func (s *Serializer) Write(fieldName string, sp *savepoint.Savepoint, view storageview.View) error {
	if !Enabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return errs.New(errs.SerializerClosed, "serializer is closed")
	}
	if s.state == OpenRead {
		return errs.New(errs.SerializerClosed, "serializer opened in Read mode cannot write")
	}
	if err := view.Validate(); err != nil {
		return err
	}
	if _, err := s.checkShape(fieldName, view); err != nil {
		return err
	}

	if !s.savepoints.Has(sp) {
		if _, err := s.savepoints.Insert(sp); err != nil {
			return err
		}
	}

	id, err := s.savepoints.AddField(sp, fieldName)
	if err != nil {
		return err
	}

	archiveID, err := s.arc.Write(view, id)
	if err != nil {
		s.savepoints.RemoveField(sp, fieldName)
		return err
	}
	if archiveID != id {
		if serr := s.savepoints.SetFieldID(sp, fieldName, archiveID); serr != nil {
			s.savepoints.RemoveField(sp, fieldName)
			return serr
		}
	}

	if err := s.updateMetaDataLocked(); err != nil {
		s.savepoints.RemoveField(sp, fieldName)
		return err
	}

	logging.Logger().Debug("serializer: wrote field", "field", fieldName, "savepoint", sp.Name, "occurrence", archiveID.Occurrence)
	return nil
}

// Read fills view with the bytes archived under (fieldName, sp). Reads
// are unaffected by SerializationEnabled.
func (s *Serializer) Read(fieldName string, sp *savepoint.Savepoint, view storageview.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return errs.New(errs.SerializerClosed, "serializer is closed")
	}
	if err := view.Validate(); err != nil {
		return err
	}
	if _, err := s.checkShape(fieldName, view); err != nil {
		return err
	}

	id, err := s.savepoints.Lookup(sp, fieldName)
	if err != nil {
		return err
	}
	return s.arc.Read(view, id)
}

// WriteSliced writes only the sub-box described by box, for archives that
// advertise SupportsSlicing. Fails with
// ArchiveSliceNotSupported otherwise.
func (s *Serializer) WriteSliced(fieldName string, sp *savepoint.Savepoint, view storageview.View, box archive.Box) error {
	if !Enabled() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed || s.state == OpenRead {
		return errs.New(errs.SerializerClosed, "serializer is not open for writing")
	}
	slicer, ok := s.arc.(archive.Slicer)
	if !ok {
		return errs.Newf(errs.ArchiveSliceNotSupported, "archive %q does not support sliced writes", s.archiveName).WithField(fieldName)
	}
	if _, err := s.checkShape(fieldName, view); err != nil {
		return err
	}

	if !s.savepoints.Has(sp) {
		if _, err := s.savepoints.Insert(sp); err != nil {
			return err
		}
	}
	id, isNew, err := s.addOrLookupForSlice(sp, fieldName)
	if err != nil {
		return err
	}

	archiveID, err := slicer.WriteSliced(view, id, box)
	if err != nil {
		if isNew {
			s.savepoints.RemoveField(sp, fieldName)
		}
		return err
	}
	if archiveID != id {
		if serr := s.savepoints.SetFieldID(sp, fieldName, archiveID); serr != nil {
			if isNew {
				s.savepoints.RemoveField(sp, fieldName)
			}
			return serr
		}
	}
	if err := s.updateMetaDataLocked(); err != nil {
		if isNew {
			s.savepoints.RemoveField(sp, fieldName)
		}
		return err
	}
	return nil
}

// addOrLookupForSlice claims a FieldID for a sliced write: the first
// slice of a field at a savepoint allocates the cell, subsequent slices
// reuse it.
func (s *Serializer) addOrLookupForSlice(sp *savepoint.Savepoint, fieldName string) (savepoint.FieldID, bool, error) {
	if id, err := s.savepoints.Lookup(sp, fieldName); err == nil {
		return id, false, nil
	}
	id, err := s.savepoints.AddField(sp, fieldName)
	return id, true, err
}

// ReadSliced reads only the sub-box described by box, for archives that
// advertise SupportsSlicing.
func (s *Serializer) ReadSliced(fieldName string, sp *savepoint.Savepoint, view storageview.View, box archive.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Closed {
		return errs.New(errs.SerializerClosed, "serializer is closed")
	}
	slicer, ok := s.arc.(archive.Slicer)
	if !ok {
		return errs.Newf(errs.ArchiveSliceNotSupported, "archive %q does not support sliced reads", s.archiveName).WithField(fieldName)
	}
	if _, err := s.checkShape(fieldName, view); err != nil {
		return err
	}
	id, err := s.savepoints.Lookup(sp, fieldName)
	if err != nil {
		return err
	}
	return slicer.ReadSliced(view, id, box)
}
