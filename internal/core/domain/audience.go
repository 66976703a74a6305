package domain

// MatchSAML1Audience reports whether the target relying-party address
// appears among the audience URIs of any SAML 1.1 audience restriction
// condition. Matching is exact and case-sensitive; an empty or absent
// restriction list never matches.
func MatchSAML1Audience(target string, conditions []SAML1AudienceRestrictionCondition) bool {
	for _, cond := range conditions {
		for _, audience := range cond.Audiences {
			if target == audience {
				return true
			}
		}
	}
	return false
}

// MatchSAML2Audience reports whether the target relying-party address
// appears among the audience URIs of any SAML 2.0 audience restriction.
// Matching is exact and case-sensitive; an empty or absent restriction
// list never matches.
func MatchSAML2Audience(target string, restrictions []SAML2AudienceRestriction) bool {
	for _, restriction := range restrictions {
		for _, audience := range restriction.Audiences {
			if target == audience {
				return true
			}
		}
	}
	return false
}

// MatchAudience dispatches to the variant-specific matcher for the
// populated branch of the assertion. An assertion without conditions
// never matches.
func MatchAudience(target string, a *Assertion) bool {
	if a.SAML1() != nil {
		if a.SAML1().Conditions == nil {
			return false
		}
		return MatchSAML1Audience(target, a.SAML1().Conditions.AudienceRestrictionConditions)
	}
	if a.SAML2().Conditions == nil {
		return false
	}
	return MatchSAML2Audience(target, a.SAML2().Conditions.AudienceRestrictions)
}
