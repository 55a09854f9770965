package sources

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arnadev/SaaS-review-Scraper/internal/scrape"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "Acme", want: "acme"},
		{in: "Acme Corp", want: "acme-corp"},
		{in: "  Hähnel & Sons!  ", want: "h-hnel-sons"},
		{in: "already-a-slug", want: "already-a-slug"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Slugify(tt.in))
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"g2", "G2", " trustpilot ", "capterra"} {
		if _, err := ParseKind(raw); err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
	}
	if _, err := ParseKind("yelp"); err == nil {
		t.Fatal("expected error for unsupported source")
	}
}

func TestForCompanyBackends(t *testing.T) {
	t.Parallel()

	g2, err := ForCompany(KindG2, "Acme")
	require.NoError(t, err)
	require.True(t, g2.NeedsBrowser)
	require.Equal(t, 1, g2.EmptyPageThreshold)
	require.Equal(t, "https://www.g2.com/products/acme/reviews", g2.PageURL(1))
	require.Equal(t, "https://www.g2.com/products/acme/reviews?page=3", g2.PageURL(3))

	tp, err := ForCompany(KindTrustPilot, "Acme")
	require.NoError(t, err)
	require.False(t, tp.NeedsBrowser)
	require.Equal(t, scrape.DefaultEmptyPageThreshold, tp.EmptyPageThreshold)

	_, err = ForCompany(KindG2, "!!!")
	require.Error(t, err, "a name with no slug characters cannot form a product URL")
}

func TestExtractTrustPilot(t *testing.T) {
	t.Parallel()

	page := scrape.Page{Content: `
<html><body>
  <article data-service-review-card-paper="true">
    <div data-service-review-rating="4"></div>
    <span data-consumer-name-typography="true">Dana</span>
    <h2 data-service-review-title-typography="true">Solid product</h2>
    <p data-service-review-text-typography="true">Does what it says.</p>
    <time datetime="2024-02-10T08:00:00Z">February 10, 2024</time>
  </article>
  <article data-service-review-card-paper="true">
    <h2 data-service-review-title-typography="true"></h2>
    <p data-service-review-text-typography="true"></p>
  </article>
  <nav><a name="pagination-button-next" href="?page=2">Next</a></nav>
</body></html>`}

	got := extractTrustPilot(page)
	require.Len(t, got.Items, 1, "the empty card produces no record")
	require.True(t, got.HasNext)

	r := got.Items[0]
	require.Equal(t, "trustpilot", r.Source)
	require.Equal(t, "Solid product", r.Title)
	require.Equal(t, "Does what it says.", r.Body)
	require.Equal(t, "Dana", r.Author)
	require.Equal(t, 4.0, r.Rating)
	require.NotNil(t, r.Date)
	require.Equal(t, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), *r.Date)
}

func TestExtractTrustPilotLastPage(t *testing.T) {
	t.Parallel()

	page := scrape.Page{Content: `<html><body>
  <article data-service-review-card-paper="true">
    <h2 data-service-review-title-typography="true">Fine</h2>
    <time datetime="2024-01-05">January 5, 2024</time>
  </article>
</body></html>`}

	got := extractTrustPilot(page)
	require.Len(t, got.Items, 1)
	require.False(t, got.HasNext, "no next link means the listing is exhausted")
}

func TestExtractG2(t *testing.T) {
	t.Parallel()

	page := scrape.Page{Content: `
<html><body>
  <div itemprop="review">
    <meta itemprop="datePublished" content="2024-03-01"/>
    <meta itemprop="ratingValue" content="4.5"/>
    <span itemprop="author">Sam</span>
    <h3 itemprop="name">Great for small teams</h3>
    <div itemprop="reviewBody">We switched last year and never looked back.</div>
  </div>
  <a rel="next" href="?page=2">Next</a>
</body></html>`}

	got := extractG2(page)
	require.Len(t, got.Items, 1)
	require.True(t, got.HasNext)

	r := got.Items[0]
	require.Equal(t, "g2", r.Source)
	require.Equal(t, "Great for small teams", r.Title)
	require.Equal(t, "Sam", r.Author)
	require.Equal(t, 4.5, r.Rating)
	require.NotNil(t, r.Date)
}

func TestExtractCapterra(t *testing.T) {
	t.Parallel()

	page := scrape.Page{Content: `
<html><body>
  <div data-testid="review-card">
    <span data-testid="reviewer-name">Lee</span>
    <span data-testid="rating-value">3.0</span>
    <h3 data-testid="review-title">Decent but pricey</h3>
    <p data-testid="review-text">Support is slow to respond.</p>
    <time datetime="2024-01-20">January 20, 2024</time>
  </div>
</body></html>`}

	got := extractCapterra(page)
	require.Len(t, got.Items, 1)
	require.False(t, got.HasNext)

	r := got.Items[0]
	require.Equal(t, "capterra", r.Source)
	require.Equal(t, "Decent but pricey", r.Title)
	require.Equal(t, 3.0, r.Rating)
	require.Equal(t, "2024-01-20", r.RawDate)
	require.NotNil(t, r.Date)
}

func TestExtractUnparsableDateKeepsRecordWithoutDate(t *testing.T) {
	t.Parallel()

	page := scrape.Page{Content: `
<html><body>
  <article data-service-review-card-paper="true">
    <h2 data-service-review-title-typography="true">Undated</h2>
    <time>a while ago, honestly</time>
  </article>
</body></html>`}

	got := extractTrustPilot(page)
	require.Len(t, got.Items, 1)
	require.Nil(t, got.Items[0].Date)
	require.Equal(t, "a while ago, honestly", got.Items[0].RawDate)
}
