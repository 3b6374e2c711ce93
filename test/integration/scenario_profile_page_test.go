package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A signed-in user with two plugins installed visits a company profile:
// both contribute to the header in registration order, and each carries
// its own content.
func TestCompanyProfileRendersInstalledPlugins(t *testing.T) {
	h, cleanup := setupTest(t)
	defer cleanup()

	token := h.login("mira")
	h.install(token, "timeline")
	h.install(token, "company-metrics")

	renderings := h.renderSlot(token, "CompanyProfile.Header", "company", "acme")
	require.Equal(t, []string{"company-metrics", "timeline"}, renderedIDs(renderings))

	assert.Equal(t, "Funding Summary", renderings[0].Title)
	assert.Equal(t, "$56.5M", renderings[0].Props["totalRaised"])
	assert.Equal(t, "Latest Round", renderings[1].Title)
	assert.Equal(t, "Series B", renderings[1].Props["round"])
}

// The same installations render on every company page; resolution does not
// depend on which entity the viewer looks at.
func TestResolutionIsStableAcrossEntities(t *testing.T) {
	h, cleanup := setupTest(t)
	defer cleanup()

	token := h.login("mira")
	h.install(token, "company-metrics")
	h.install(token, "timeline")

	for _, companyID := range []string{"acme", "lumen-bio", "ferrostack"} {
		renderings := h.renderSlot(token, "CompanyProfile.Header", "company", companyID)
		assert.Equal(t, []string{"company-metrics", "timeline"}, renderedIDs(renderings), companyID)
	}
}

// An anonymous visitor sees no plugin content anywhere, while the plugin
// catalog itself is public.
func TestAnonymousVisitorSeesNoPluginContent(t *testing.T) {
	h, cleanup := setupTest(t)
	defer cleanup()

	// A signed-in user installs everything; the anonymous result is still
	// empty because installations are per viewer.
	token := h.login("mira")
	h.install(token, "company-metrics")

	renderings := h.renderSlot("", "CompanyProfile.Header", "company", "acme")
	assert.Empty(t, renderings)

	status, _ := h.request(http.MethodGet, "/api/plugins", "", "")
	assert.Equal(t, http.StatusOK, status)
}

// Viewers are independent: one user's installations never leak into
// another's pages.
func TestInstallationsAreScopedToViewer(t *testing.T) {
	h, cleanup := setupTest(t)
	defer cleanup()

	mira := h.login("mira")
	devon := h.login("devon")
	h.install(mira, "company-metrics")
	h.install(devon, "timeline")

	assert.Equal(t, []string{"company-metrics"}, renderedIDs(h.renderSlot(mira, "CompanyProfile.Header", "company", "acme")))
	assert.Equal(t, []string{"timeline"}, renderedIDs(h.renderSlot(devon, "CompanyProfile.Header", "company", "acme")))
}

// Investor pages pull from the plugins that declare investor slots.
func TestInvestorProfileSlots(t *testing.T) {
	h, cleanup := setupTest(t)
	defer cleanup()

	token := h.login("mira")
	h.install(token, "timeline")
	h.install(token, "investor-network")

	renderings := h.renderSlot(token, "InvestorProfile.Details", "investor", "meridian-capital")
	require.Equal(t, []string{"timeline", "investor-network"}, renderedIDs(renderings))

	// The network plugin's index was built at load time from the catalog.
	assert.Equal(t, "Portfolio & Co-Investors", renderings[1].Title)
}

// The global sidebar renders without an entity; entity overrides never
// apply to it.
func TestGlobalSidebar(t *testing.T) {
	h, cleanup := setupTest(t)
	defer cleanup()

	token := h.login("mira")
	h.install(token, "market-news")

	renderings := h.renderSlot(token, "Global.Sidebar", "", "")
	require.Equal(t, []string{"market-news"}, renderedIDs(renderings))
	assert.NotEmpty(t, renderings[0].Props["headlines"])
}
