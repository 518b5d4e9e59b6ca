// Package agent implements the client-side tracking tag as an embeddable
// state machine: attribution cookie lifecycle, identity resolution against
// the tracking backend, and page-view registration.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// ErrNoIdentity is returned by Convert when no click identity is stored in
// any of the cookie or session slots.
var ErrNoIdentity = errors.New("no click identity available")

// Page is one page load as seen by the tag.
type Page struct {
	URL      string // full page URL including query
	Referrer string
	FBP      string
	FBC      string
}

// Agent threads the tag configuration and cookie state through the
// attribution decision function. One Agent models one browser.
type Agent struct {
	cfg    Config
	store  CookieStore
	client *Client
	logger *slog.Logger
}

func New(cfg Config, store CookieStore, client *Client, logger *slog.Logger) *Agent {
	return &Agent{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: logger,
	}
}

type pageSignals struct {
	explicitID string
	campaignID string
	source     string
	extra      url.Values
}

func parsePage(pageURL string) pageSignals {
	sig := pageSignals{extra: url.Values{}}
	u, err := url.Parse(pageURL)
	if err != nil {
		return sig
	}
	q := u.Query()
	sig.explicitID = q.Get("mcid")
	sig.campaignID = q.Get("cmpid")
	sig.source = q.Get("tsource")
	for k, vs := range q {
		if strings.HasPrefix(k, "utm_") || isSubParam(k) {
			sig.extra[k] = vs
		}
	}
	return sig
}

func isSubParam(k string) bool {
	return len(k) == 4 && strings.HasPrefix(k, "sub") && k[3] >= '1' && k[3] <= '8'
}

// Visit runs the per-page-load tracking algorithm and returns the identity
// the page ends up using, if any. Tracking never fails the page: every error
// path degrades to the stored identity or to no action.
func (a *Agent) Visit(ctx context.Context, page Page) (string, error) {
	sig := parsePage(page.URL)

	// Paid iff a campaign id or source label is present. A configured
	// default campaign id makes every visit paid (config hazard, kept for
	// compatibility with existing tags).
	isPaid := sig.campaignID != "" || sig.source != "" || a.cfg.DefaultCampaignID != ""

	// An explicit identity on the page URL short-circuits resolution.
	if sig.explicitID != "" {
		active := a.applyIdentity(sig.explicitID, isPaid)
		a.registerView(ctx, active, page.Referrer)
		return active, nil
	}

	stored := a.store.GetCookie(cookieStored)

	warranted := a.cfg.UniversalTracking || sig.campaignID != "" || a.cfg.DefaultCampaignID != ""
	if !warranted {
		if stored != "" {
			a.registerView(ctx, stored, page.Referrer)
		}
		return stored, nil
	}

	needNew := stored == "" || a.cfg.TrackAllVisits ||
		ShouldUpdate(a.decisionCurrent(stored, isPaid), "", a.cfg.Attribution, isPaid)
	if !needNew {
		a.registerView(ctx, stored, page.Referrer)
		return stored, nil
	}

	campaignID := sig.campaignID
	if campaignID == "" {
		campaignID = a.cfg.DefaultCampaignID
	}
	if campaignID == "" {
		campaignID = "organic"
	}
	source := sig.source
	if source == "" {
		if page.Referrer != "" {
			source = "referral"
		} else {
			source = "direct"
		}
	}

	newID, err := a.client.Track(ctx, campaignID, TrackRequest{
		Referrer: page.Referrer,
		Source:   source,
		FBP:      page.FBP,
		FBC:      page.FBC,
		Extra:    sig.extra,
	})
	if err != nil {
		a.logger.Error("Identity request exhausted retries", "campaign", campaignID, "error", err)
		a.client.ReportError(ctx, "identity request failed: "+err.Error(), page.URL, stored)
		if stored != "" {
			a.registerView(ctx, stored, page.Referrer)
			return stored, nil
		}
		return "", err
	}

	active := a.applyIdentity(newID, isPaid)
	a.registerView(ctx, active, page.Referrer)
	return active, nil
}

// Convert posts a first-party conversion using whichever identity is
// available: the policy-governed cookie, then the paid-only cookie, then the
// per-tab session fallback.
func (a *Agent) Convert(ctx context.Context, conversionType string, value float64, currency string) error {
	id := a.store.GetCookie(cookieStored)
	if id == "" {
		id = a.store.GetCookie(cookiePaid)
	}
	if id == "" {
		id = a.store.GetSession(sessionKey)
	}
	if id == "" {
		return ErrNoIdentity
	}
	return a.client.Convert(ctx, id, conversionType, value, currency)
}

// applyIdentity runs the attribution decision for a freshly resolved
// identity and returns the identity now in effect.
func (a *Agent) applyIdentity(newID string, isPaid bool) string {
	maxAge := time.Duration(a.cfg.CookieDurationDays) * 24 * time.Hour
	stored := a.store.GetCookie(cookieStored)

	active := stored
	if ShouldUpdate(a.decisionCurrent(stored, isPaid), newID, a.cfg.Attribution, isPaid) {
		a.store.SetCookie(cookieStored, newID, a.cfg.CookieDomain, maxAge)
		active = newID
	}

	// The paid-only cookie follows the same policy but only moves on paid
	// visits; under firstpaid it is written at most once.
	if isPaid && ShouldUpdate(a.store.GetCookie(cookiePaid), newID, a.cfg.Attribution, true) {
		a.store.SetCookie(cookiePaid, newID, a.cfg.CookieDomain, maxAge)
	}

	a.store.SetSession(sessionKey, newID)
	return active
}

// decisionCurrent picks the identity the policy compares against. firstpaid
// keys off the paid-only cookie so a stored organic identity does not block
// the first paid one; organic visits still can never displace a stored
// identity under that model.
func (a *Agent) decisionCurrent(stored string, isPaid bool) string {
	if a.cfg.Attribution != FirstPaid || stored == "" || !isPaid {
		return stored
	}
	return a.store.GetCookie(cookiePaid)
}

// registerView is fire and forget: one attempt, failure logged and reported,
// never retried.
func (a *Agent) registerView(ctx context.Context, clickID, referrer string) {
	if clickID == "" {
		return
	}
	if a.cfg.RegisterViewOnce && a.store.GetSession(sessionViewReg) != "" {
		return
	}
	if err := a.client.RegisterView(ctx, clickID, referrer); err != nil {
		a.logger.Warn("Page view registration failed", "click_id", clickID, "error", err)
		a.client.ReportError(ctx, "view registration failed: "+err.Error(), "", clickID)
		return
	}
	if a.cfg.RegisterViewOnce {
		a.store.SetSession(sessionViewReg, "1")
	}
}
