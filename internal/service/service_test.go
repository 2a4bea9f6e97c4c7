package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/shorty/internal/database"
	"github.com/vadimbarashkov/shorty/internal/models"
	"github.com/vadimbarashkov/shorty/internal/shortcode"
)

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) Create(ctx context.Context, shortCode, longURL string) (*models.URL, error) {
	args := r.Called(ctx, shortCode, longURL)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) GetByLongURL(ctx context.Context, longURL string) (*models.URL, error) {
	args := r.Called(ctx, longURL)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) ExistsByShortCode(ctx context.Context, shortCode string) (bool, error) {
	args := r.Called(ctx, shortCode)
	return args.Bool(0), args.Error(1)
}

func (r *MockURLRepository) IncrementClickCount(ctx context.Context, shortCode string) (*models.URL, error) {
	args := r.Called(ctx, shortCode)
	url, _ := args.Get(0).(*models.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) Count(ctx context.Context) (int64, error) {
	args := r.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (r *MockURLRepository) SumClickCounts(ctx context.Context) (int64, error) {
	args := r.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type URLServiceTestSuite struct {
	suite.Suite
	errUnknown  error
	urlRepoMock *MockURLRepository
	svc         *URLService
}

func (suite *URLServiceTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *URLServiceTestSuite) SetupSubTest() {
	suite.urlRepoMock = new(MockURLRepository)
	gen := shortcode.NewGenerator(shortcode.DefaultAlphabet, shortcode.DefaultLength)
	suite.svc = NewURLService(suite.urlRepoMock, gen, true)
}

func (suite *URLServiceTestSuite) TearDownSubTest() {
	suite.urlRepoMock.AssertExpectations(suite.T())
}

func (suite *URLServiceTestSuite) TestShortenURL() {
	ctx := context.Background()

	suite.Run("invalid url", func() {
		url, err := suite.svc.ShortenURL(ctx, "ftp://example.com/file")

		suite.Error(err)
		suite.ErrorIs(err, ErrInvalidURL)
		suite.Nil(url)
	})

	suite.Run("validation disabled accepts any string", func() {
		suite.svc = NewURLService(suite.urlRepoMock, suite.svc.gen, false)

		suite.urlRepoMock.
			On("GetByLongURL", ctx, "not a url at all").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.urlRepoMock.
			On("ExistsByShortCode", ctx, mock.Anything).
			Once().
			Return(false, nil)
		suite.urlRepoMock.
			On("Create", ctx, mock.Anything, "not a url at all").
			Once().
			Return(&models.URL{ShortCode: "abc123", LongURL: "not a url at all"}, nil)

		url, err := suite.svc.ShortenURL(ctx, "not a url at all")

		suite.NoError(err)
		suite.NotNil(url)
	})

	suite.Run("existing url returns same record", func() {
		existing := &models.URL{
			ShortCode:  "abc123",
			LongURL:    "https://example.com",
			ClickCount: 7,
			CreatedAt:  time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		}

		suite.urlRepoMock.
			On("GetByLongURL", ctx, "https://example.com").
			Once().
			Return(existing, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com")

		suite.NoError(err)
		suite.Equal(existing, url)
	})

	suite.Run("dedup lookup error", func() {
		suite.urlRepoMock.
			On("GetByLongURL", ctx, "https://example.com").
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("retries on collision", func() {
		suite.urlRepoMock.
			On("GetByLongURL", ctx, "https://example.com").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.urlRepoMock.
			On("ExistsByShortCode", ctx, mock.Anything).
			Once().
			Return(true, nil)
		suite.urlRepoMock.
			On("ExistsByShortCode", ctx, mock.Anything).
			Once().
			Return(false, nil)
		suite.urlRepoMock.
			On("Create", ctx, mock.Anything, "https://example.com").
			Once().
			Return(&models.URL{ShortCode: "abc123", LongURL: "https://example.com"}, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("abc123", url.ShortCode)
	})

	suite.Run("retries when insert loses uniqueness race", func() {
		suite.urlRepoMock.
			On("GetByLongURL", ctx, "https://example.com").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.urlRepoMock.
			On("ExistsByShortCode", ctx, mock.Anything).
			Times(2).
			Return(false, nil)
		suite.urlRepoMock.
			On("Create", ctx, mock.Anything, "https://example.com").
			Once().
			Return(nil, database.ErrShortCodeExists)
		suite.urlRepoMock.
			On("Create", ctx, mock.Anything, "https://example.com").
			Once().
			Return(&models.URL{ShortCode: "abc123", LongURL: "https://example.com"}, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
	})

	suite.Run("code space exhausted", func() {
		suite.urlRepoMock.
			On("GetByLongURL", ctx, "https://example.com").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.urlRepoMock.
			On("ExistsByShortCode", ctx, mock.Anything).
			Times(10).
			Return(true, nil)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, ErrCodeSpaceExhausted)
		suite.Nil(url)
	})

	suite.Run("unknown create error", func() {
		suite.urlRepoMock.
			On("GetByLongURL", ctx, "https://example.com").
			Once().
			Return(nil, database.ErrURLNotFound)
		suite.urlRepoMock.
			On("ExistsByShortCode", ctx, mock.Anything).
			Once().
			Return(false, nil)
		suite.urlRepoMock.
			On("Create", ctx, mock.Anything, "https://example.com").
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.svc.ShortenURL(ctx, "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})
}

func (suite *URLServiceTestSuite) TestResolveShortCode() {
	ctx := context.Background()

	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("GetByShortCode", ctx, "abc123").
			Once().
			Return(nil, database.ErrURLNotFound)

		url, err := suite.svc.ResolveShortCode(ctx, "abc123")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success without counting", func() {
		suite.urlRepoMock.
			On("GetByShortCode", ctx, "abc123").
			Once().
			Return(&models.URL{ShortCode: "abc123", LongURL: "https://example.com", ClickCount: 3}, nil)

		url, err := suite.svc.ResolveShortCode(ctx, "abc123")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("https://example.com", url.LongURL)
		suite.Equal(int64(3), url.ClickCount)
	})
}

func (suite *URLServiceTestSuite) TestResolveAndCount() {
	ctx := context.Background()

	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("IncrementClickCount", ctx, "abc123").
			Once().
			Return(nil, database.ErrURLNotFound)

		url, err := suite.svc.ResolveAndCount(ctx, "abc123")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("IncrementClickCount", ctx, "abc123").
			Once().
			Return(&models.URL{ShortCode: "abc123", LongURL: "https://example.com", ClickCount: 1}, nil)

		url, err := suite.svc.ResolveAndCount(ctx, "abc123")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("https://example.com", url.LongURL)
		suite.Equal(int64(1), url.ClickCount)
	})
}

func (suite *URLServiceTestSuite) TestGetURLStats() {
	ctx := context.Background()

	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("GetByShortCode", ctx, "abc123").
			Once().
			Return(nil, database.ErrURLNotFound)

		url, err := suite.svc.GetURLStats(ctx, "abc123")

		suite.Error(err)
		suite.ErrorIs(err, database.ErrURLNotFound)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("GetByShortCode", ctx, "abc123").
			Once().
			Return(&models.URL{ShortCode: "abc123", LongURL: "https://example.com", ClickCount: 5}, nil)

		url, err := suite.svc.GetURLStats(ctx, "abc123")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal(int64(5), url.ClickCount)
	})
}

func (suite *URLServiceTestSuite) TestGetSystemStats() {
	ctx := context.Background()

	suite.Run("count error", func() {
		suite.urlRepoMock.
			On("Count", ctx).
			Once().
			Return(int64(0), suite.errUnknown)

		stats, err := suite.svc.GetSystemStats(ctx)

		suite.Error(err)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(stats)
	})

	suite.Run("empty store", func() {
		suite.urlRepoMock.
			On("Count", ctx).
			Once().
			Return(int64(0), nil)
		suite.urlRepoMock.
			On("SumClickCounts", ctx).
			Once().
			Return(int64(0), nil)

		stats, err := suite.svc.GetSystemStats(ctx)

		suite.NoError(err)
		suite.NotNil(stats)
		suite.Zero(stats.TotalURLs)
		suite.Zero(stats.TotalClicks)
		suite.Zero(stats.AvgClicksPerURL)
	})

	suite.Run("average over records", func() {
		suite.urlRepoMock.
			On("Count", ctx).
			Once().
			Return(int64(2), nil)
		suite.urlRepoMock.
			On("SumClickCounts", ctx).
			Once().
			Return(int64(3), nil)

		stats, err := suite.svc.GetSystemStats(ctx)

		suite.NoError(err)
		suite.NotNil(stats)
		suite.Equal(int64(2), stats.TotalURLs)
		suite.Equal(int64(3), stats.TotalClicks)
		suite.Equal(1.5, stats.AvgClicksPerURL)
	})
}

func TestURLService(t *testing.T) {
	suite.Run(t, new(URLServiceTestSuite))
}
