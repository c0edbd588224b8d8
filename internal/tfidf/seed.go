package tfidf

import (
	"log/slog"
	"sync"
)

// seedCorpus bootstraps the process-wide vocabulary when no corpus is
// supplied at startup. Short job-domain documents in both languages so the
// default vectorizer knows the terms the matcher cares about.
var seedCorpus = []string{
	"software engineer with experience in python java go and distributed systems",
	"backend developer building rest apis with fastapi django postgresql and redis",
	"frontend developer react typescript javascript html css responsive design",
	"data scientist machine learning pandas numpy tensorflow statistics sql",
	"devops engineer docker kubernetes terraform aws ci/cd monitoring prometheus",
	"mobile developer android kotlin ios swift flutter react native",
	"qa engineer automated testing selenium cypress pytest quality assurance",
	"product manager agile scrum roadmap stakeholders analytics",
	"desarrollador de software con experiencia en python java y bases de datos sql",
	"ingeniero backend apis rest microservicios docker kubernetes aws",
	"desarrollador frontend react angular javascript diseño web responsivo",
	"científico de datos machine learning análisis estadístico python sql",
	"ingeniero devops automatización infraestructura nube azure gcp linux",
	"analista de datos excel power bi tableau visualización reportes",
	"administrador de bases de datos mysql postgresql oracle respaldos",
	"líder técnico gestión de equipos arquitectura de software mentoría",
	"soporte técnico atención a clientes redes windows linux hardware",
	"diseñador ux ui figma prototipos investigación de usuarios accesibilidad",
	"ingeniero de seguridad ciberseguridad pentesting firewalls cissp",
	"contador finanzas sap facturación nómina auditoría excel",
}

var (
	defaultVec  *Vectorizer
	defaultOnce sync.Once
)

// Default returns the process-wide vectorizer, fitting it on first use from
// the embedded seed corpus. Immutable afterwards.
func Default() *Vectorizer {
	defaultOnce.Do(func() {
		defaultVec = New()
		if err := defaultVec.Fit(seedCorpus); err != nil {
			// Seed corpus is embedded and non-empty; this is a programming error.
			panic("tfidf: seed fit failed: " + err.Error())
		}
		slog.Debug("tfidf: default vectorizer fitted",
			slog.Int("vocabulary", defaultVec.VocabularySize()))
	})
	return defaultVec
}
