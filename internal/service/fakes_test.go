package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"certdesk/internal/domains"
	"certdesk/internal/filestore"
	"certdesk/internal/storage"

	"github.com/stretchr/testify/require"
)

// In-memory stand-ins for the storage providers and the file store. Each fake
// implements just enough behavior for the services to exercise their logic.

type memFileStore struct {
	files map[string][]byte
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: map[string][]byte{}}
}

func (m *memFileStore) Read(_ context.Context, name string) ([]byte, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, filestore.ErrNotFound
	}
	return data, nil
}

func (m *memFileStore) Write(_ context.Context, name string, data []byte) error {
	m.files[name] = append([]byte(nil), data...)
	return nil
}

func (m *memFileStore) Exists(_ context.Context, name string) (bool, error) {
	_, ok := m.files[name]
	return ok, nil
}

func (m *memFileStore) Delete(_ context.Context, name string) error {
	if _, ok := m.files[name]; !ok {
		return filestore.ErrNotFound
	}
	delete(m.files, name)
	return nil
}

func (m *memFileStore) List(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	return names, nil
}

type fakeTemplateProvider struct {
	templates map[int64]domains.Template
	nextID    int64
}

func newFakeTemplateProvider() *fakeTemplateProvider {
	return &fakeTemplateProvider{templates: map[int64]domains.Template{}, nextID: 1}
}

func (f *fakeTemplateProvider) SaveTemplate(_ context.Context, create domains.TemplateCreate) (domains.Template, error) {
	template := domains.Template{
		ID:              f.nextID,
		Name:            create.Name,
		FilePath:        create.FilePath,
		Specializations: create.Specializations,
		CreateDate:      time.Now(),
	}
	for i, name := range create.FieldNames {
		template.Fields = append(template.Fields, domains.Field{
			ID:         int64(i + 1),
			FieldName:  name,
			TemplateID: template.ID,
		})
	}
	f.templates[template.ID] = template
	f.nextID++
	return template, nil
}

func (f *fakeTemplateProvider) GetTemplateByID(_ context.Context, templateID int64) (domains.Template, error) {
	template, ok := f.templates[templateID]
	if !ok {
		return domains.Template{}, storage.ErrNotFound
	}
	return template, nil
}

func (f *fakeTemplateProvider) UpdateTemplate(_ context.Context, templateID int64, patch domains.TemplateUpdate) (domains.Template, error) {
	template, ok := f.templates[templateID]
	if !ok {
		return domains.Template{}, storage.ErrNotFound
	}
	if patch.Name != nil {
		template.Name = *patch.Name
	}
	if patch.Specializations != nil {
		template.Specializations = patch.Specializations
	}
	if patch.FilePath != nil {
		template.FilePath = *patch.FilePath
	}
	if patch.FieldNames != nil {
		template.Fields = nil
		for i, name := range patch.FieldNames {
			template.Fields = append(template.Fields, domains.Field{
				ID:         int64(i + 1),
				FieldName:  name,
				TemplateID: templateID,
			})
		}
	}
	now := time.Now()
	template.UpdateDate = &now
	f.templates[templateID] = template
	return template, nil
}

func (f *fakeTemplateProvider) DeleteTemplate(_ context.Context, templateID int64) error {
	if _, ok := f.templates[templateID]; !ok {
		return storage.ErrNotFound
	}
	delete(f.templates, templateID)
	return nil
}

func (f *fakeTemplateProvider) GetAllTemplates(_ context.Context, specs []domains.Specialization) ([]domains.Template, error) {
	var out []domains.Template
	for _, template := range f.templates {
		if len(specs) == 0 || overlaps(template.Specializations, specs) {
			out = append(out, template)
		}
	}
	return out, nil
}

func overlaps(a, b []domains.Specialization) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func (f *fakeTemplateProvider) GetFieldsByTemplateID(_ context.Context, templateID int64) ([]domains.Field, error) {
	template, ok := f.templates[templateID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return template.Fields, nil
}

type fakeResponseProvider struct {
	responses map[int64]domains.StudentResponse
	nextID    int64

	filter domains.ResponseFilter
	page   domains.ResponsePage

	rangeStart time.Time
	rangeEnd   time.Time
}

func newFakeResponseProvider() *fakeResponseProvider {
	return &fakeResponseProvider{responses: map[int64]domains.StudentResponse{}, nextID: 1}
}

func (f *fakeResponseProvider) SaveResponse(_ context.Context, response domains.StudentResponse) (domains.StudentResponse, error) {
	response.ID = f.nextID
	f.responses[response.ID] = response
	f.nextID++
	return response, nil
}

func (f *fakeResponseProvider) GetResponseByID(_ context.Context, responseID int64) (domains.StudentResponse, error) {
	response, ok := f.responses[responseID]
	if !ok {
		return domains.StudentResponse{}, storage.ErrNotFound
	}
	return response, nil
}

func (f *fakeResponseProvider) UpdateResponse(_ context.Context, response domains.StudentResponse) (domains.StudentResponse, error) {
	if _, ok := f.responses[response.ID]; !ok {
		return domains.StudentResponse{}, storage.ErrNotFound
	}
	f.responses[response.ID] = response
	return response, nil
}

func (f *fakeResponseProvider) UpdateStatus(_ context.Context, responseID int64, status domains.ResponseStatus) (domains.StudentResponse, error) {
	response, ok := f.responses[responseID]
	if !ok {
		return domains.StudentResponse{}, storage.ErrNotFound
	}
	response.Status = status
	f.responses[responseID] = response
	return response, nil
}

func (f *fakeResponseProvider) DeleteResponse(_ context.Context, responseID int64) error {
	if _, ok := f.responses[responseID]; !ok {
		return storage.ErrNotFound
	}
	delete(f.responses, responseID)
	return nil
}

func (f *fakeResponseProvider) GetResponsesByStudentID(_ context.Context, studentID int64) ([]domains.ResponseDetails, error) {
	var out []domains.ResponseDetails
	for _, response := range f.responses {
		if response.StudentID == studentID {
			out = append(out, domains.ResponseDetails{StudentResponse: response})
		}
	}
	return out, nil
}

func (f *fakeResponseProvider) GetAllWithDetails(_ context.Context, filter domains.ResponseFilter) (domains.ResponsePage, error) {
	f.filter = filter
	return f.page, nil
}

func (f *fakeResponseProvider) GetApprovedWithinRange(_ context.Context, start, end time.Time) ([]domains.ResponseDetails, error) {
	f.rangeStart = start
	f.rangeEnd = end

	var out []domains.ResponseDetails
	for _, response := range f.responses {
		if response.Status != domains.StatusApproved {
			continue
		}
		if response.ResponseDate.Before(start) || response.ResponseDate.After(end) {
			continue
		}
		out = append(out, domains.ResponseDetails{StudentResponse: response})
	}
	return out, nil
}

type fakeUserProvider struct {
	users map[int64]domains.User
}

func newFakeUserProvider() *fakeUserProvider {
	return &fakeUserProvider{users: map[int64]domains.User{}}
}

func (f *fakeUserProvider) GetUserByID(_ context.Context, userID int64) (domains.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return domains.User{}, storage.ErrNotFound
	}
	return user, nil
}

type fakeAuthProvider struct {
	byEmail map[string]domains.User
	nextID  int64
}

func newFakeAuthProvider() *fakeAuthProvider {
	return &fakeAuthProvider{byEmail: map[string]domains.User{}, nextID: 1}
}

func (f *fakeAuthProvider) SaveUser(_ context.Context, passHash string, user domains.UserRegister) (domains.User, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return domains.User{}, storage.ErrUserExist
	}
	saved := domains.User{
		ID:             f.nextID,
		Email:          user.Email,
		PassHash:       passHash,
		Faculty:        user.Faculty,
		Specialization: user.Specialization,
		Year:           user.Year,
		Role:           domains.RoleStudent,
		CreatedAt:      time.Now(),
	}
	f.byEmail[user.Email] = saved
	f.nextID++
	return saved, nil
}

func (f *fakeAuthProvider) GetUserByEmail(_ context.Context, email string) (domains.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return domains.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeAuthProvider) GetUserByID(_ context.Context, userID int64) (domains.User, error) {
	for _, user := range f.byEmail {
		if user.ID == userID {
			return user, nil
		}
	}
	return domains.User{}, storage.ErrNotFound
}

func (f *fakeAuthProvider) UpdateRole(_ context.Context, email string, role domains.Role) (domains.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return domains.User{}, storage.ErrNotFound
	}
	user.Role = role
	f.byEmail[email] = user
	return user, nil
}

func (f *fakeAuthProvider) UpdatePassword(_ context.Context, email string, passHash string) error {
	user, ok := f.byEmail[email]
	if !ok {
		return storage.ErrNotFound
	}
	user.PassHash = passHash
	f.byEmail[email] = user
	return nil
}

// minimalDocx builds a one-paragraph base document whose body references the
// given placeholders.
func minimalDocx(t *testing.T, placeholders ...string) []byte {
	t.Helper()

	var body bytes.Buffer
	body.WriteString(`<w:document><w:body><w:p><w:r><w:t>`)
	for _, name := range placeholders {
		fmt.Fprintf(&body, "{%s} ", name)
	}
	body.WriteString(`</w:t></w:r></w:p></w:body></w:document>`)

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	w, err := writer.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return buf.Bytes()
}
