package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliRajag51/bookstore-backend/models"
	"github.com/AliRajag51/bookstore-backend/testutil"
)

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	fail string
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	if u.fail != "" && strings.HasSuffix(key, u.fail) {
		return "", errors.New("bucket unavailable")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.keys = append(u.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func fileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := w.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["images"]
}

func TestCatalogCreateAppliesDefaults(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := NewCatalogService(db, nil)

	book, err := catalog.Create(context.Background(), BookInput{
		Title:  strPtr("  Dune "),
		Author: strPtr("Frank Herbert"),
		Price:  decPtr("9.99"),
		Tags:   &[]string{"classic", "scifi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, "General", book.Category)
	assert.True(t, book.IsActive)

	stored, err := catalog.Get(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, "9.99", stored.Price.StringFixed(2))
	assert.Equal(t, []string{"classic", "scifi"}, []string(stored.Tags))
}

func TestCatalogCreateValidation(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := NewCatalogService(db, nil)
	ctx := context.Background()

	_, err := catalog.Create(ctx, BookInput{Title: strPtr("Dune")})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = catalog.Create(ctx, BookInput{Title: strPtr("Dune"), Author: strPtr("Herbert"), Price: decPtr("-1")})
	assert.Equal(t, KindValidation, KindOf(err))

	stock := -2
	_, err = catalog.Create(ctx, BookInput{Title: strPtr("Dune"), Author: strPtr("Herbert"), Stock: &stock})
	assert.Equal(t, KindValidation, KindOf(err))

	rating := 6.0
	_, err = catalog.Create(ctx, BookInput{Title: strPtr("Dune"), Author: strPtr("Herbert"), Rating: &rating})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestCatalogCreateKeepsInactiveFlag(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := NewCatalogService(db, nil)
	inactive := false

	book, err := catalog.Create(context.Background(), BookInput{Title: strPtr("Draft"), Author: strPtr("Someone"), IsActive: &inactive})
	require.NoError(t, err)

	stored, err := catalog.Get(context.Background(), book.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
}

func TestCatalogDuplicateSlugConflicts(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := NewCatalogService(db, nil)
	ctx := context.Background()

	_, err := catalog.Create(ctx, BookInput{Slug: strPtr("dune"), Title: strPtr("Dune"), Author: strPtr("Herbert")})
	require.NoError(t, err)
	_, err = catalog.Create(ctx, BookInput{Slug: strPtr("dune"), Title: strPtr("Dune II"), Author: strPtr("Herbert")})
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestCatalogListActiveNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := NewCatalogService(db, nil)
	ctx := context.Background()

	old := testutil.CreateBook(t, db, "Old", "1")
	hidden := testutil.CreateBook(t, db, "Hidden", "1")
	newest := testutil.CreateBook(t, db, "Newest", "1")
	require.NoError(t, catalog.Delete(ctx, hidden.ID))

	books, page, err := catalog.List(ctx, NewPage(1, 10), "")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, newest.ID, books[0].ID)
	assert.Equal(t, old.ID, books[1].ID)
	assert.Equal(t, int64(2), page.Total)

	books, page, err = catalog.List(ctx, NewPage(2, 1), "")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, old.ID, books[0].ID)
	assert.Equal(t, 2, page.Page)

	books, _, err = catalog.List(ctx, NewPage(1, 10), "Poetry")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestCatalogDeleteIsSoft(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := NewCatalogService(db, nil)
	ctx := context.Background()
	book := testutil.CreateBook(t, db, "Dune", "10")

	require.NoError(t, catalog.Delete(ctx, book.ID))
	stored, err := catalog.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	assert.Equal(t, KindNotFound, KindOf(catalog.Delete(ctx, 9999)))
	_, err = catalog.Get(ctx, 9999)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCatalogUpdateIsPartial(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := NewCatalogService(db, nil)
	ctx := context.Background()
	book := testutil.CreateBook(t, db, "Dune", "10")

	updated, err := catalog.Update(ctx, book.ID, BookInput{Price: decPtr("12.00")})
	require.NoError(t, err)
	assert.Equal(t, "Dune", updated.Title)
	assert.Equal(t, "12.00", updated.Price.StringFixed(2))

	_, err = catalog.Update(ctx, book.ID, BookInput{Title: strPtr(" ")})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = catalog.Update(ctx, 9999, BookInput{Price: decPtr("1")})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestCatalogUploadImages(t *testing.T) {
	db := testutil.NewDB(t)
	uploader := &fakeUploader{fail: "broken.png"}
	catalog := NewCatalogService(db, uploader)
	ctx := context.Background()
	book := testutil.CreateBook(t, db, "Dune", "10")

	updated, failed, err := catalog.UploadImages(ctx, book.ID, fileHeaders(t, "cover.png", "broken.png", "back.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{"broken.png"}, failed)
	require.Len(t, updated.Images, 2)
	assert.Equal(t, updated.Images[0], updated.CoverImage)
	assert.True(t, strings.HasPrefix(uploader.keys[0], "books/"))

	stored, err := catalog.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Images, 2)
	assert.Equal(t, updated.CoverImage, stored.CoverImage)
}

func TestCatalogUploadImagesErrors(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	book := testutil.CreateBook(t, db, "Dune", "10")

	_, _, err := NewCatalogService(db, nil).UploadImages(ctx, book.ID, fileHeaders(t, "cover.png"))
	assert.Equal(t, KindConfiguration, KindOf(err))

	catalog := NewCatalogService(db, &fakeUploader{fail: ".png"})
	_, _, err = catalog.UploadImages(ctx, book.ID, nil)
	assert.Equal(t, KindValidation, KindOf(err))

	_, failed, err := catalog.UploadImages(ctx, book.ID, fileHeaders(t, "a.png", "b.png"))
	assert.Equal(t, KindDependency, KindOf(err))
	assert.Len(t, failed, 2)

	_, _, err = catalog.UploadImages(ctx, 9999, fileHeaders(t, "a.png"))
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestNewPageClamps(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 20}, NewPage(0, 0))
	assert.Equal(t, Page{Page: 3, Limit: 100}, NewPage(3, 500))
	assert.Equal(t, 20, NewPage(2, 10).offset())
}

func TestCatalogDoesNotTouchOtherBooksOnUpload(t *testing.T) {
	db := testutil.NewDB(t)
	catalog := NewCatalogService(db, &fakeUploader{})
	ctx := context.Background()
	book := testutil.CreateBook(t, db, "Dune", "10")
	other := testutil.CreateBook(t, db, "Emma", "5")

	_, _, err := catalog.UploadImages(ctx, book.ID, fileHeaders(t, "cover.png"))
	require.NoError(t, err)

	var stored models.Book
	require.NoError(t, db.First(&stored, other.ID).Error)
	assert.Empty(t, stored.Images)
	assert.Empty(t, stored.CoverImage)
}
