package compose

import (
	"net/url"
	"regexp"
	"strings"
)

// referenceURLs is the curated list of official data tools, dashboards
// and guidance documents the assistant may suggest alongside answers.
var referenceURLs = []string{
	"https://aidsinfo.unaids.org/",
	"https://cfs.hivci.org/index.html",
	"https://whohts.web.app/",
	"https://www.statcompiler.com/en/",
	"https://www.prepwatch.org/",
	"https://adh.popcouncil.org/",
	"https://kpatlas.unaids.org/dashboard",
	"https://hivpreventioncoalition.unaids.org/en/resources/sub-national-hiv-estimates-priority-populations-tool",
	"https://hivpreventioncoalition.unaids.org/en/resources/effectiveness-behavioural-interventions-prevent-hiv-compendium-evidence-2017-updated-2019",
	"https://www.rand.org/pubs/drafts/DRU3092.html",
	"https://jointsiwg.unaids.org/publication/prep-target-setting-for-key-and-high-priority-populations-estimating-the-number-at-risk/",
	"https://www.prepitweb.org/",
	"https://mer.amfar.org/",
	"https://hivpreventioncoalition.unaids.org/en/resources/five-hiv-prevention-self-assessment-tools-psats",
	"https://dsd.unaids.org/?_gl=1*1it17e4*_gcl_au*MTY2OTY5Njk4OC4xNzMwMTQ1NzQy*_ga*OTMzOTg2OTc1LjE3MjE5MzU3MzE.*_ga_T7FBEZEXNC*MTczMTM0NTcyNy45LjEuMTczMTM0OTMxNS42MC4wLjA.",
	"https://hivpreventioncoalition.unaids.org/en/scorecards",
	"https://phia-data.icap.columbia.edu/visualization",
	"https://data.unaids.org/pub/basedocument/2010/epi_alert_1stqtr2010_en.pdf",
	"https://pmc.ncbi.nlm.nih.gov/articles/PMC4763690/",
	"https://www.unaids.org/sites/default/files/media/documents/2023-unaids-global-aids-update_annex2_en.pdf",
	"https://www.unaids.org/sites/default/files/media_asset/JC3073_HIV_recency_technical_guidance_en.pdf",
	"https://data.unaids.org/pub/manual/2005/20050101_gs_guidemeasuringpopulation_en.pdf",
	"https://strive.lshtm.ac.uk/system/files/attachments/STRIVE%20stigma%20measurement.pdf",
	"https://www.susana.org/_resources/documents/default/3-4609-7-1641292116.pdf",
	"https://www.who.int/publications/i/item/9789241514415",
	"https://www.state.gov/wp-content/uploads/2024/01/004.WHOBBSGuidelinesSupplementalMaterials_2017.pdf",
	"https://assets-global.website-files.com/63ff2c1bed17e622bce9c2ea/65c46fe46caaf5e875d1d1aa_ePBS%20only%20body_FINAL_pb.pdf",
	"https://www.fhi360.org/wp-content/uploads/2024/02/resource-epic-rapid-coverage-survey.pdf",
	"https://resources.theglobalfund.org/media/13909/cr_me-measurement-hiv-prevention-programs_guidance_en.pdf",
	"https://www.fhi360.org/wp-content/uploads/2024/02/resource-data-verification-improvement-guide.pdf",
	"https://www.who.int/teams/global-hiv-hepatitis-and-stis-programmes/hiv/strategic-information/hiv-surveillance",
	"https://dhis2.org/health-data-toolkit/",
	"https://www.who.int/publications/i/item/9789241508995",
	"https://www.prepwatch.org/wp-content/uploads/2022/07/Kenya-HIV-Prevention-Revolution-Road-Map.pdf",
	"https://www.prepwatch.org/wp-content/uploads/2016/08/Guidelines-on-ARV-for-Treating-Preventing-HIV-Infections-in-Kenya.pdf",
	"https://www.prepwatch.org/wp-content/uploads/2024/02/MOSAIC_Kenya-CAB-VCSA_15Dec23.pdf",
	"https://open.unaids.org/countries/cote-divoire",
	"https://www.prepwatch.org/wp-content/uploads/2022/03/Eswatini-National-HIVAIDS-Guidelines-2018-2023.pdf",
	"https://hivpreventioncoalition.unaids.org/sites/default/files/attachments/zimbabwe_znasp_addendum_final_submission_2023.pdf",
	"https://www.prepwatch.org/wp-content/uploads/2024/04/MOSAIC-3.2.1-Zimbabwe-CAB-PrEP-VCSA-FINAL-6Feb2024.pdf",
	"https://knowledgehub.health.gov.za/system/files/elibdownloads/2023-04/Post-Exposure%2520Prophylaxis%2520Guidelines_Final_2021.pdf",
	"https://www.differentiatedservicedelivery.org/wp-content/uploads/Consolidated-Guidelines-For-Hiv-Care-In-Ghana.pdf",
	"https://dsduganda.com/wp-content/uploads/2023/05/Consolidated-HIV-and-AIDS-Guidelines-20230516.pdf",
	"https://www.prepwatch.org/resources/ghana-national-hiv-aids-strategic-plan-2021-25/",
	"https://www.prepwatch.org/wp-content/uploads/2024/08/Malawi_National_Strategic_Plan_HIV_extended_2023-202711.pdf",
	"https://www.prepwatch.org/wp-content/uploads/2022/07/National-Strategic-Plan-of-Response-to-HIV-and-AIDS-NSP-V-2021-25.pdf",
	"https://www.differentiatedservicedelivery.org/wp-content/uploads/National-guidelines-Nigeria-2020.pdf",
	"https://www.differentiatedservicedelivery.org/wp-content/uploads/South-Sudan_2017-2.pdf",
	"https://executiveboard.wfp.org/document_download/WFP-0000142938",
	"https://www.prepwatch.org/wp-content/uploads/2024/10/MOSAIC_South-Africa-VCSA_17-Oct-2024_for-PrEPWatch.pdf",
	"https://core.ac.uk/download/pdf/11307437.pdf",
	"https://www.tacaids.go.tz/uploads/documents/en-1676620457-NMSF%20V%202021-2026.pdf",
	"https://allafrica.com/stories/202507010182.html",
	"https://elearning.idi.co.ug/wp-content/uploads/2022/05/Consolidated-Guidelines-for-the-Prevention-and-Treatment-of-HIV-and-AIDS-in-Uganda-2020.pdf",
	"https://healtheducationresources.unesco.org/sites/default/files/resources/22280.pdf",
	"https://library.health.go.ug/index.php/communicable-disease/hivaids/national-hiv-prevention-strategy",
	"https://www.prepwatch.org/resources/national-hiv-aids-strategic-framework-2017-2021/",
	"https://www.sadc.int/document/regional-strategy-hiv-prevention-treatment-and-care-and-sexual-and-reproductive-health-0",
	"https://www.pulp.up.ac.za/catalogue/legal-compilations/compendium-of-key-documents-relating-to-human-rights-and-hiv-in-eastern-and-southern-africa",
	"https://idpc.net/publications/2020/09/ecowas-regional-strategy-for-hiv-tuberculosis-hepatitis-b-c-and-sexual-and-reproductive-health-and-rights-among-key-populations",
	"https://hivpreventioncoalition.unaids.org/en",
}

var (
	wordRe = regexp.MustCompile(`[a-z0-9]+`)
	pathRe = regexp.MustCompile(`[^a-z0-9]+`)

	// Country follows a preposition, optionally two capitalized words.
	countryRe         = regexp.MustCompile(`\b(?:for|in|of|about)\s+([A-Z][a-zA-Z]+(?:\s+[A-Z][a-zA-Z]+)?)\b`)
	countryFallbackRe = regexp.MustCompile(`\b(?:for|in|of|about)\s+([a-z]+(?:\s+[a-z]+)?)\b`)
)

func tokenize(text string) map[string]bool {
	toks := make(map[string]bool)
	for _, t := range wordRe.FindAllString(strings.ToLower(text), -1) {
		toks[t] = true
	}
	return toks
}

func urlTokens(u string) map[string]bool {
	toks := make(map[string]bool)
	parsed, err := url.Parse(u)
	if err != nil {
		return toks
	}
	for _, t := range strings.Split(strings.ToLower(parsed.Host), ".") {
		if t != "" {
			toks[t] = true
		}
	}
	for _, t := range pathRe.Split(strings.ToLower(parsed.Path), -1) {
		if t != "" {
			toks[t] = true
		}
	}
	return toks
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// PickReferenceURL selects the single best curated reference for the
// prompt. A handful of topics map directly to a known site; everything
// else is scored by token overlap between the prompt and the URL, with
// bonuses for the authoritative data sources.
func PickReferenceURL(prompt string) string {
	q := tokenize(prompt)
	lower := strings.ToLower(prompt)

	if containsAny(lower, "pokemon", "pikachu") {
		return "https://www.pokemon.com/us"
	}
	if strings.Contains(lower, "pepfar") {
		return "https://www.prepitweb.org/"
	}
	if containsAny(lower, "dsd", "differentiated service delivery", "differentiated service") {
		return "https://dsd.unaids.org/?_gl=1*1it17e4*_gcl_au*MTY2OTY5Njk4OC4xNzMwMTQ1NzQy*_ga*OTMzOTg2OTc1LjE3MjE5MzU3MzE.*_ga_T7FBEZEXNC*MTczMTM0NTcyNy45LjEuMTczMTM0OTMxNS42MC4wLjA."
	}
	if containsAny(lower, "adolescent", "adolescents", "youth", "young people") {
		return "https://adh.popcouncil.org/"
	}
	if containsAny(lower, "behavioral", "behavioural", "behaviour", "behavior") {
		return "https://hivpreventioncoalition.unaids.org/en/resources/effectiveness-behavioural-interventions-prevent-hiv-compendium-evidence-2017-updated-2019"
	}
	if containsAny(lower, "gpc scorecard", "gpc", "global prevention coalition", "scorecard") {
		return scorecardURL(prompt, lower)
	}

	prefersUNAIDS := false
	for _, t := range []string{"prevalence", "estimate", "estimates", "hiv", "incidence", "ghana"} {
		if q[t] {
			prefersUNAIDS = true
			break
		}
	}

	bestURL, bestScore := "", -1
	for _, u := range referenceURLs {
		toks := urlTokens(u)
		score := 0
		for t := range toks {
			if q[t] {
				score++
			}
		}
		if toks["unaids"] || toks["aidsinfo"] {
			if prefersUNAIDS {
				score += 5
			} else {
				score += 3
			}
		}
		if toks["who"] {
			score += 2
		}
		if toks["icap"] || toks["phia"] {
			score += 2
		}
		if score > bestScore {
			bestScore, bestURL = score, u
		}
	}
	if bestURL == "" {
		return referenceURLs[0]
	}
	return bestURL
}

// scorecardURL builds a per-country GPC scorecard link. The country is
// taken from the original prompt so capitalization survives; a
// lowercase scan is the fallback.
func scorecardURL(prompt, lower string) string {
	if m := countryRe.FindStringSubmatch(prompt); m != nil {
		country := strings.ReplaceAll(strings.ToLower(m[1]), " ", "-")
		return "https://hivpreventioncoalition.unaids.org/en/scorecards/" + country
	}
	if m := countryFallbackRe.FindStringSubmatch(lower); m != nil {
		country := strings.ReplaceAll(m[1], " ", "-")
		return "https://hivpreventioncoalition.unaids.org/en/scorecards/" + country
	}
	return "https://hivpreventioncoalition.unaids.org/en/scorecards"
}
