package p2pnet

// lsdb.go implements the link-state database: every advertised LSA
// collected under its advertising router's ID, keyed the way
// davidbalbert-chatter/ospf/lsdb.go keys its installed LSAs by originating
// router.

import (
	"net/netip"
)

// LSDB is the collected set of GlobalRouterLSAs discovered across a
// topology, keyed by AdvertisingRouter.
type LSDB struct {
	lsas  map[netip.Addr]*GlobalRouterLSA
	order []netip.Addr
}

// CreateLSDB is a constructor for an empty database.
func CreateLSDB() *LSDB {
	return &LSDB{
		lsas:  make(map[netip.Addr]*GlobalRouterLSA),
		order: make([]netip.Addr, 0),
	}
}

// Install adds or replaces the LSA advertised by lsa.AdvertisingRouter.
func (db *LSDB) Install(lsa *GlobalRouterLSA) {
	if _, exists := db.lsas[lsa.AdvertisingRouter]; !exists {
		db.order = append(db.order, lsa.AdvertisingRouter)
	}
	db.lsas[lsa.AdvertisingRouter] = lsa
}

// Lookup returns the LSA advertised by routerID, if any.
func (db *LSDB) Lookup(routerID netip.Addr) (*GlobalRouterLSA, bool) {
	lsa, ok := db.lsas[routerID]
	return lsa, ok
}

// RouterIDs returns every advertising router ID currently installed, in
// the order they were first installed.
func (db *LSDB) RouterIDs() []netip.Addr {
	return db.order
}

// Len returns the number of LSAs installed.
func (db *LSDB) Len() int {
	return len(db.lsas)
}

// BuildLSDB runs DiscoverLSAs on every router in topo and installs the
// resulting LSAs into a fresh LSDB. Routers whose DiscoverLSAs produces
// zero links (an isolated node) still get an LSA installed, matching the
// original source's "every router, however sparsely connected, appears in
// the database" behavior.
func BuildLSDB(topo *Topology) *LSDB {
	db := CreateLSDB()
	for _, node := range topo.Nodes() {
		router, ok := node.Router()
		if !ok {
			continue
		}
		router.DiscoverLSAs()
		for i := 0; i < router.GetNumLSAs(); i++ {
			lsa, _ := router.GetLSA(i)
			db.Install(lsa)
		}
	}
	return db
}
