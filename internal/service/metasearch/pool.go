package metasearch

import (
	"math/rand/v2"
	"strings"
)

// PublicInstances are the public SearXNG mirrors sampled when a query is not
// pinned to a private deployment. They only serve HTML.
var PublicInstances = []string{
	"baresearch.org",
	"copp.gg",
	"darmarit.org",
	"etsi.me",
	"fairsuch.net",
	"nogoo.me",
	"northboot.xyz",
	"nyc1.sx.ggtyler.dev",
	"ooglester.com",
	"opnxng.com",
	"paulgo.io",
	"priv.au",
	"s.trung.fun",
	"search.blitzw.in",
	"search.charliewhiskey.net",
	"search.citw.lgbt",
	"search.darkness.services",
	"search.datura.network",
	"search.dotone.nl",
	"search.gcomm.ch",
	"search.hbubli.cc",
	"search.im-in.space",
	"search.incogniweb.net",
	"search.inetol.net",
	"search.leptons.xyz",
	"search.nadeko.net",
	"search.ngn.tf",
	"search.ononoki.org",
	"search.privacyredirect.com",
	"search.sapti.me",
	"search.rowie.at",
	"search.projectsegfau.lt",
	"search.tommy-tran.com",
	"searx.aleteoryx.me",
	"searx.ankha.ac",
	"searx.be",
	"searx.colbster937.dev",
	"searx.daetalytica.io",
	"searx.dresden.network",
	"searx.foss.family",
	"searx.hu",
	"searx.juancord.xyz",
	"searx.lunar.icu",
	"searx.mxchange.org",
	"searx.namejeff.xyz",
	"searx.oakleycord.dev",
	"searx.ro",
	"searx.sev.monster",
	"searx.thefloatinglab.world",
	"searx.tiekoetter.com",
	"searx.tuxcloud.net",
	"searx.work",
	"searx.zhenyapav.com",
	"searxng.hweeren.com",
	"searxng.online",
	"searxng.shreven.org",
	"searxng.site",
	"skyrimhater.com",
	"sx.ca.zorby.top",
	"sx.catgirl.cloud",
	"sx.thatxtreme.dev",
	"sx.zorby.top",
	"xo.wtf",
}

// InstancePool holds candidate backends. Selection is uniform with
// replacement: a retry may land on the instance that just failed.
type InstancePool struct {
	instances []string
	intn      func(n int) int
}

// NewInstancePool creates a pool over the given hosts. Entries may be bare
// hostnames (https is assumed) or full base URLs.
func NewInstancePool(instances []string) *InstancePool {
	return &InstancePool{
		instances: append([]string(nil), instances...),
		intn:      rand.IntN,
	}
}

// Len returns the number of instances in the pool
func (p *InstancePool) Len() int {
	return len(p.instances)
}

// Choose returns pinned verbatim when non-empty, otherwise a uniformly random
// instance. Returns "" when the pool is empty and nothing is pinned.
func (p *InstancePool) Choose(pinned string) string {
	if pinned != "" {
		return pinned
	}
	if len(p.instances) == 0 {
		return ""
	}
	return p.instances[p.intn(len(p.instances))]
}

// baseURL turns a pool entry into a URL prefix without trailing slash.
func baseURL(instance string) string {
	instance = strings.TrimRight(instance, "/")
	if strings.HasPrefix(instance, "http://") || strings.HasPrefix(instance, "https://") {
		return instance
	}
	return "https://" + instance
}
