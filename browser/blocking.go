package browser

import "strings"

// adDomains are ad and tracking hosts blocked on every tab, together with
// their subdomains.
var adDomains = []string{
	"doubleclick.net",
	"googlesyndication.com",
	"googleadservices.com",
	"google-analytics.com",
	"googletagmanager.com",
	"googletagservices.com",
	"facebook.net",
	"adnxs.com",
	"adsrvr.org",
	"amazon-adsystem.com",
	"criteo.com",
	"criteo.net",
	"outbrain.com",
	"taboola.com",
	"moatads.com",
	"pubmatic.com",
	"rubiconproject.com",
	"scorecardresearch.com",
	"quantserve.com",
	"hotjar.com",
	"mixpanel.com",
	"segment.io",
	"chartbeat.com",
	"optimizely.com",
	"bidswitch.net",
	"openx.net",
	"casalemedia.com",
	"demdex.net",
	"krxd.net",
	"rlcdn.com",
	"consensu.org",
}

// blockedURLPatterns builds the Network.setBlockedURLs pattern list: every ad
// domain and its subdomains, followed by extra patterns, without duplicates.
func blockedURLPatterns(blockAds bool, extra []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	if blockAds {
		for _, d := range adDomains {
			add("*://" + d + "/*")
			add("*://*." + d + "/*")
		}
	}
	for _, p := range extra {
		add(p)
	}
	return out
}
