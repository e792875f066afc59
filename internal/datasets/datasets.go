// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package datasets holds the built-in OpenSanctions dataset constants.
//
// Data license: OpenSanctions data is CC BY-NC 4.0
// (https://www.opensanctions.org/licensing/). Commercial use of the data or
// outputs derived from it requires a separate license from OpenSanctions;
// this code is independent of the data license.
package datasets

import "sort"

// SourceURL is the OpenSanctions default collection in nested FtM JSON form.
const SourceURL = "https://data.opensanctions.org/datasets/latest/default/targets.nested.json"

// Default is the set of 55 confirmed sanctions datasets from profiling the
// OpenSanctions default collection. Identified via keyword matching
// (sanctions, sdn, ofac, terror, freeze, ...) plus explicit includes for
// known sources. Excludes PEP lists, Wikidata, wanted lists, and
// exclusion/debarment lists that aren't sanctions.
var Default = map[string]struct{}{
	"adb_sanctions":                {},
	"ae_local_terrorists":          {},
	"afdb_sanctions":               {},
	"at_nbter_sanctions":           {},
	"au_dfat_sanctions":            {},
	"az_fiu_sanctions":             {},
	"be_fod_sanctions":             {},
	"ca_dfatd_sema_sanctions":      {},
	"ch_seco_sanctions":            {},
	"cn_sanctions":                 {},
	"cz_national_sanctions":        {},
	"cz_terrorists":                {},
	"ee_international_sanctions":   {},
	"eg_terrorists":                {},
	"eu_cor_members":               {},
	"eu_fsf":                       {},
	"eu_journal_sanctions":         {},
	"eu_sanctions_map":             {},
	"ext_us_ofac_press_releases":   {},
	"gb_fcdo_sanctions":            {},
	"gb_hmt_sanctions":             {},
	"iadb_sanctions":               {},
	"il_mod_terrorists":            {},
	"il_wmd_sanctions":             {},
	"ir_sanctions":                 {},
	"jo_sanctions":                 {},
	"jp_mof_sanctions":             {},
	"kg_fiu_national":              {},
	"kz_afmrk_sanctions":           {},
	"lt_fiu_freezes":               {},
	"lv_fiu_sanctions":             {},
	"mc_fund_freezes":              {},
	"md_terror_sanctions":          {},
	"my_moha_sanctions":            {},
	"ng_nigsac_sanctions":          {},
	"nl_terrorism_list":            {},
	"np_mha_sanctions":             {},
	"nz_russia_sanctions":          {},
	"ph_amlc_sanctions":            {},
	"pl_finanse_sanctions":         {},
	"pl_mswia_sanctions":           {},
	"qa_nctc_sanctions":            {},
	"ro_onpcsb_sanctions":          {},
	"ru_mfa_sanctions":             {},
	"sg_terrorists":                {},
	"th_designated_person":         {},
	"ua_nsdc_sanctions":            {},
	"ua_war_sanctions":             {},
	"un_sc_sanctions":              {},
	"us_bis_denied":                {},
	"us_ofac_cons":                 {},
	"us_ofac_enforcement_actions":  {},
	"us_ofac_sdn":                  {},
	"us_trade_csl":                 {},
	"za_fic_sanctions":             {},
}

// FromList builds a dataset set from a slice of dataset identifiers.
func FromList(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Sorted returns the members of a dataset set in lexicographic order.
func Sorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
