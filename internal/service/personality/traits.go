package personality

import "github.com/veilapp/veil-backend/internal/db"

// Static trait tables per dimension, keyed by whether the score lands above
// or below the 0.5 midpoint.
var highTraits = map[db.PersonalityDimension][]string{
	db.DimOpenness:              {"creative", "curious", "imaginative"},
	db.DimConscientiousness:     {"organized", "responsible", "disciplined"},
	db.DimExtraversion:          {"outgoing", "social", "energetic"},
	db.DimAgreeableness:         {"cooperative", "trusting", "helpful"},
	db.DimNeuroticism:           {"sensitive", "emotional", "anxious"},
	db.DimHumorStyle:            {"playful", "witty", "lighthearted"},
	db.DimCommunicationStyle:    {"expressive", "direct", "open"},
	db.DimRelationshipGoals:     {"committed", "intentional", "serious"},
	db.DimConflictResolution:    {"collaborative", "patient", "diplomatic"},
	db.DimEmotionalIntelligence: {"empathetic", "perceptive", "attuned"},
}

var lowTraits = map[db.PersonalityDimension][]string{
	db.DimOpenness:              {"practical", "conventional", "traditional"},
	db.DimConscientiousness:     {"flexible", "spontaneous", "casual"},
	db.DimExtraversion:          {"reserved", "quiet", "introspective"},
	db.DimAgreeableness:         {"competitive", "skeptical", "independent"},
	db.DimNeuroticism:           {"calm", "stable", "resilient"},
	db.DimHumorStyle:            {"dry", "subtle", "understated"},
	db.DimCommunicationStyle:    {"measured", "reflective", "private"},
	db.DimRelationshipGoals:     {"exploratory", "easygoing", "unhurried"},
	db.DimConflictResolution:    {"avoidant", "conciliatory", "reserved"},
	db.DimEmotionalIntelligence: {"rational", "detached", "analytical"},
}

var dimensionKeywords = map[db.PersonalityDimension][]string{
	db.DimOpenness:              {"creativity", "art", "travel", "learning"},
	db.DimConscientiousness:     {"planning", "goals", "work", "achievement"},
	db.DimExtraversion:          {"social", "parties", "people", "energy"},
	db.DimAgreeableness:         {"helping", "cooperation", "harmony", "trust"},
	db.DimNeuroticism:           {"stress", "emotion", "worry", "sensitivity"},
	db.DimHumorStyle:            {"humor", "jokes", "banter", "fun"},
	db.DimCommunicationStyle:    {"conversation", "listening", "honesty", "expression"},
	db.DimRelationshipGoals:     {"commitment", "future", "family", "partnership"},
	db.DimConflictResolution:    {"compromise", "resolution", "fairness", "calm"},
	db.DimEmotionalIntelligence: {"empathy", "awareness", "feelings", "support"},
}

func traitsFor(dim db.PersonalityDimension, score float64) []string {
	var table map[db.PersonalityDimension][]string
	if score > 0.5 {
		table = highTraits
	} else {
		table = lowTraits
	}
	if traits, ok := table[dim]; ok {
		return traits
	}
	return []string{"balanced"}
}

func keywordsFor(dim db.PersonalityDimension) []string {
	if kw, ok := dimensionKeywords[dim]; ok {
		return kw
	}
	return nil
}
