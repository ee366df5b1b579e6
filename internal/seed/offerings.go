// Package seed holds the launch catalog and demo accounts loaded into a fresh
// store.
package seed

import "github.com/robertarktes/bootcamp-booking/internal/domain"

func Offerings() []domain.Offering {
	return []domain.Offering{
		{
			Slug:        "social-media-management-avance",
			Title:       "Maîtrisez le Social Media Management",
			Tagline:     "Passez de gestionnaire à stratège des réseaux sociaux",
			Description: "Une formation intensive pour maîtriser la stratégie social media, l'analyse de données et l'optimisation de vos performances sur les réseaux sociaux.",
			Duration:    "2 jours",
			Hours:       14,
			Level:       domain.LevelAdvanced,
			Format:      domain.FormatInPerson,
			Price:       450000,
			Targets: []string{
				"Social Media Managers",
				"Community Managers seniors",
				"Responsables communication",
				"Chefs de projet digital",
			},
			Prerequisites: []string{
				"Minimum 2 ans d'expérience en gestion de réseaux sociaux",
				"Connaissance des principales plateformes (Facebook, Instagram, LinkedIn, Twitter)",
				"Notions de base en analytics",
				"Ordinateur portable requis",
			},
			Outcomes: []string{
				"Concevoir une stratégie social media alignée sur les objectifs business",
				"Analyser et interpréter les KPIs pour optimiser vos performances",
				"Créer un calendrier éditorial efficace et automatisé",
				"Maîtriser les outils d'analytics avancés",
				"Gérer une crise sur les réseaux sociaux",
				"Présenter des reportings impactants à votre direction",
			},
			Program: []domain.ProgramDay{
				{Day: 1, Title: "Stratégie et planification avancée", Modules: []domain.ProgramModule{
					{Title: "Audit et benchmark concurrentiel", Duration: "2h", Topics: []string{"Méthodologie d'audit social media", "Analyse SWOT digitale", "Outils de veille et benchmark"}},
					{Title: "Définition de la stratégie", Duration: "3h", Topics: []string{"Alignement objectifs business et social media", "Choix des plateformes et formats", "Construction des personas avancés", "Définition des KPIs stratégiques"}},
					{Title: "Planification éditoriale avancée", Duration: "2h", Topics: []string{"Content pillars et thématiques", "Calendrier éditorial optimisé", "Outils de planification et automatisation"}},
				}},
				{Day: 2, Title: "Analytics, reporting et optimisation", Modules: []domain.ProgramModule{
					{Title: "Analytics avancés", Duration: "3h", Topics: []string{"Configuration des outils d'analytics", "Lecture et interprétation des données", "Attribution et parcours client", "Tests A/B et expérimentation"}},
					{Title: "Reporting et présentation", Duration: "2h", Topics: []string{"Construction de dashboards", "Storytelling avec les données", "Présentation à la direction"}},
					{Title: "Gestion de crise et cas pratiques", Duration: "2h", Topics: []string{"Protocole de gestion de crise", "Études de cas réels", "Simulation et mise en pratique"}},
				}},
			},
			Methodology: []string{
				"70% de pratique, 30% de théorie",
				"Travail sur vos propres comptes et projets",
				"Exercices en petits groupes",
				"Retours personnalisés du formateur",
				"Accès aux templates et ressources exclusives",
			},
			Trainer: domain.Trainer{
				Name:      "Sarah Koné",
				Title:     "Experte Social Media & Digital Strategist",
				Bio:       "Plus de 10 ans d'expérience en stratégie digitale. Ex-directrice social media chez des agences internationales. Accompagne les grandes marques africaines dans leur transformation digitale.",
				Expertise: []string{"Stratégie Social Media", "Analytics & Data", "Content Strategy", "Brand Building"},
			},
			Includes: []string{
				"14 heures de formation intensive",
				"Support de cours complet (PDF)",
				"Templates et outils exclusifs",
				"Accès à la communauté Big Five",
				"Certificat de formation",
				"Pause-café et déjeuner inclus",
			},
			FAQ: []domain.FAQ{
				{Question: "Puis-je payer en plusieurs fois ?", Answer: "Oui, nous proposons un paiement en 2 ou 3 fois sans frais. Contactez-nous pour plus d'informations."},
				{Question: "Un certificat est-il délivré ?", Answer: "Oui, un certificat de formation Big Five est remis à chaque participant ayant complété le bootcamp."},
				{Question: "Que dois-je apporter ?", Answer: "Votre ordinateur portable avec accès à vos comptes de réseaux sociaux professionnels."},
				{Question: "Quelle est la taille des groupes ?", Answer: "Les groupes sont limités à 12 participants maximum pour garantir un accompagnement personnalisé."},
				{Question: "Y a-t-il un suivi après la formation ?", Answer: "Oui, vous bénéficiez d'un accès à notre communauté privée et d'un suivi de 30 jours par email."},
			},
		},
		{
			Slug:        "marketing-digital-fondamentaux",
			Title:       "Les Fondamentaux du Marketing Digital",
			Tagline:     "Maîtrisez les bases pour lancer votre stratégie digitale",
			Description: "Une formation complète pour comprendre et mettre en œuvre les fondamentaux du marketing digital : SEO, publicité en ligne, email marketing et analytics.",
			Duration:    "2 jours",
			Hours:       14,
			Level:       domain.LevelIntermediate,
			Format:      domain.FormatInPerson,
			Price:       350000,
			Targets:     []string{"Responsables marketing", "Entrepreneurs", "Chargés de communication", "Freelances"},
			Prerequisites: []string{
				"Connaissance de base du marketing",
				"Utilisation régulière d'internet et des réseaux sociaux",
				"Ordinateur portable requis",
			},
			Outcomes: []string{
				"Comprendre l'écosystème du marketing digital",
				"Créer une stratégie SEO de base",
				"Lancer et optimiser des campagnes publicitaires",
				"Mettre en place une stratégie d'email marketing",
				"Analyser les performances de vos actions",
			},
			Program: []domain.ProgramDay{
				{Day: 1, Title: "Stratégie digitale et SEO", Modules: []domain.ProgramModule{
					{Title: "Introduction au marketing digital", Duration: "2h", Topics: []string{"Panorama du marketing digital", "Les canaux et leurs spécificités", "Définir ses objectifs"}},
					{Title: "SEO et référencement naturel", Duration: "3h", Topics: []string{"Fondamentaux du SEO", "Recherche de mots-clés", "Optimisation on-page", "Introduction au SEO local"}},
					{Title: "Content Marketing", Duration: "2h", Topics: []string{"Stratégie de contenu", "Formats et canaux", "Calendrier éditorial"}},
				}},
				{Day: 2, Title: "Publicité, email et analytics", Modules: []domain.ProgramModule{
					{Title: "Publicité digitale", Duration: "3h", Topics: []string{"Google Ads : fondamentaux", "Facebook/Meta Ads : fondamentaux", "Création de campagnes", "Budget et optimisation"}},
					{Title: "Email Marketing", Duration: "2h", Topics: []string{"Stratégie d'email marketing", "Outils et automatisation", "Bonnes pratiques et délivrabilité"}},
					{Title: "Analytics et mesure", Duration: "2h", Topics: []string{"Google Analytics 4", "Définition des KPIs", "Création de tableaux de bord"}},
				}},
			},
			Methodology: []string{
				"Approche pratique avec exercices concrets",
				"Études de cas adaptées au marché africain",
				"Travail en groupe et échanges",
				"Templates et checklists fournis",
			},
			Trainer: domain.Trainer{
				Name:      "Jean-Marc Diallo",
				Title:     "Consultant Marketing Digital",
				Bio:       "15 ans d'expérience en marketing digital. Formateur certifié Google et Meta. A accompagné plus de 100 entreprises dans leur transformation digitale.",
				Expertise: []string{"SEO/SEA", "Marketing Automation", "Analytics", "Growth Hacking"},
			},
			Includes: []string{
				"14 heures de formation",
				"Support de cours complet",
				"Templates et checklists",
				"Certificat de formation",
				"Pause-café et déjeuner inclus",
			},
			FAQ: []domain.FAQ{
				{Question: "Ce bootcamp est-il adapté aux débutants ?", Answer: "Ce bootcamp s'adresse aux personnes ayant des notions de base en marketing. Pour les débutants complets, nous recommandons notre formation d'introduction."},
				{Question: "Les outils utilisés sont-ils gratuits ?", Answer: "La majorité des outils présentés sont gratuits ou proposent des versions freemium suffisantes pour démarrer."},
			},
		},
		{
			Slug:        "creation-contenu-video",
			Title:       "Création de Contenu Vidéo",
			Tagline:     "Produisez des vidéos professionnelles avec votre smartphone",
			Description: "Apprenez à créer du contenu vidéo engageant pour les réseaux sociaux, de la conception à la publication, avec des techniques professionnelles accessibles.",
			Duration:    "2 jours",
			Hours:       14,
			Level:       domain.LevelBeginner,
			Format:      domain.FormatInPerson,
			Price:       300000,
			Targets:     []string{"Community Managers", "Entrepreneurs", "Créateurs de contenu", "Équipes marketing"},
			Prerequisites: []string{
				"Smartphone récent (moins de 3 ans)",
				"Compte actif sur au moins un réseau social",
				"Aucune expérience vidéo requise",
			},
			Outcomes: []string{
				"Maîtriser les bases du cadrage et de la lumière",
				"Créer des vidéos engageantes pour chaque plateforme",
				"Éditer vos vidéos sur smartphone",
				"Optimiser vos vidéos pour l'algorithme",
				"Développer votre identité visuelle vidéo",
			},
			Program: []domain.ProgramDay{
				{Day: 1, Title: "Tournage et techniques de base", Modules: []domain.ProgramModule{
					{Title: "Les fondamentaux de la vidéo", Duration: "2h", Topics: []string{"Formats et spécificités par plateforme", "Équipement minimal recommandé", "Configuration de votre smartphone"}},
					{Title: "Techniques de tournage", Duration: "3h", Topics: []string{"Cadrage et composition", "Gestion de la lumière", "Prise de son", "Mouvements de caméra"}},
					{Title: "Atelier pratique", Duration: "2h", Topics: []string{"Tournage en conditions réelles", "Retours personnalisés"}},
				}},
				{Day: 2, Title: "Montage et publication", Modules: []domain.ProgramModule{
					{Title: "Montage sur smartphone", Duration: "3h", Topics: []string{"Présentation des apps de montage", "Techniques de montage efficaces", "Ajout de textes et effets", "Musique et sound design"}},
					{Title: "Optimisation et publication", Duration: "2h", Topics: []string{"Formats d'export optimisés", "Sous-titres et accessibilité", "Horaires de publication", "Hashtags et descriptions"}},
					{Title: "Projet final", Duration: "2h", Topics: []string{"Création d'une vidéo complète", "Présentation et critique constructive"}},
				}},
			},
			Methodology: []string{
				"80% de pratique",
				"Tournage en conditions réelles",
				"Montage de vos propres vidéos",
				"Feedback immédiat du formateur",
			},
			Trainer: domain.Trainer{
				Name:      "Awa Touré",
				Title:     "Créatrice de contenu & Vidéaste",
				Bio:       "Créatrice de contenu avec plus de 500K followers. Spécialisée dans la création de contenu viral pour les marques africaines.",
				Expertise: []string{"Création vidéo mobile", "TikTok & Reels", "Storytelling visuel", "Personal Branding"},
			},
			Includes: []string{
				"14 heures de formation",
				"Guide des apps recommandées",
				"Presets et templates",
				"Certificat de formation",
				"Pause-café et déjeuner inclus",
			},
			FAQ: []domain.FAQ{
				{Question: "Quel smartphone faut-il ?", Answer: "Un smartphone de moins de 3 ans avec une bonne qualité photo (iPhone 11+ ou équivalent Android)."},
				{Question: "Faut-il du matériel supplémentaire ?", Answer: "Non, mais nous recommandons un petit trépied smartphone (environ 5000 FCFA)."},
			},
		},
	}
}

func Sessions() []domain.Session {
	return []domain.Session{
		{ID: "smm-mars-2025", OfferingSlug: "social-media-management-avance", DateStart: "2025-03-15", DateEnd: "2025-03-16", City: "Abidjan", Format: domain.FormatInPerson, Trainer: "Sarah Koné", SpotsTotal: 12, SpotsRemaining: 4},
		{ID: "smm-avril-2025", OfferingSlug: "social-media-management-avance", DateStart: "2025-04-12", DateEnd: "2025-04-13", City: "Abidjan", Format: domain.FormatInPerson, Trainer: "Sarah Koné", SpotsTotal: 12, SpotsRemaining: 10},
		{ID: "smm-mai-2025", OfferingSlug: "social-media-management-avance", DateStart: "2025-05-17", DateEnd: "2025-05-18", City: "Abidjan", Format: domain.FormatHybrid, Trainer: "Sarah Koné", SpotsTotal: 15, SpotsRemaining: 15},
		{ID: "md-mars-2025", OfferingSlug: "marketing-digital-fondamentaux", DateStart: "2025-03-22", DateEnd: "2025-03-23", City: "Abidjan", Format: domain.FormatInPerson, Trainer: "Jean-Marc Diallo", SpotsTotal: 15, SpotsRemaining: 0},
		{ID: "md-avril-2025", OfferingSlug: "marketing-digital-fondamentaux", DateStart: "2025-04-26", DateEnd: "2025-04-27", City: "Abidjan", Format: domain.FormatInPerson, Trainer: "Jean-Marc Diallo", SpotsTotal: 15, SpotsRemaining: 8},
		{ID: "video-avril-2025", OfferingSlug: "creation-contenu-video", DateStart: "2025-04-05", DateEnd: "2025-04-06", City: "Abidjan", Format: domain.FormatInPerson, Trainer: "Awa Touré", SpotsTotal: 10, SpotsRemaining: 3},
		{ID: "video-mai-2025", OfferingSlug: "creation-contenu-video", DateStart: "2025-05-10", DateEnd: "2025-05-11", City: "Abidjan", Format: domain.FormatInPerson, Trainer: "Awa Touré", SpotsTotal: 10, SpotsRemaining: 10},
	}
}

const sampleVideoURL = "https://sample-videos.com/video321/mp4/720/big_buck_bunny_720p_1mb.mp4"

func Videos() []domain.CourseVideo {
	return []domain.CourseVideo{
		{ID: "video-smm-1-1", OfferingSlug: "social-media-management-avance", DayNumber: 1, ModuleIndex: 0, Title: "Méthodologie d'audit social media", Description: "Apprenez à réaliser un audit complet de votre présence sur les réseaux sociaux.", Duration: "45 min", VideoURL: sampleVideoURL, TotalDuration: 2700},
		{ID: "video-smm-1-2", OfferingSlug: "social-media-management-avance", DayNumber: 1, ModuleIndex: 0, Title: "Analyse SWOT digitale", Description: "Appliquez la méthode SWOT à votre stratégie digitale.", Duration: "35 min", VideoURL: sampleVideoURL, TotalDuration: 2100},
		{ID: "video-smm-1-3", OfferingSlug: "social-media-management-avance", DayNumber: 1, ModuleIndex: 1, Title: "Alignement objectifs business et social media", Description: "Comment aligner vos objectifs social media avec les objectifs de l'entreprise.", Duration: "50 min", VideoURL: sampleVideoURL, TotalDuration: 3000},
		{ID: "video-smm-1-4", OfferingSlug: "social-media-management-avance", DayNumber: 1, ModuleIndex: 1, Title: "Construction des personas avancés", Description: "Créez des personas détaillés pour mieux cibler votre audience.", Duration: "40 min", VideoURL: sampleVideoURL, TotalDuration: 2400},
		{ID: "video-smm-2-1", OfferingSlug: "social-media-management-avance", DayNumber: 2, ModuleIndex: 0, Title: "Configuration des outils d'analytics", Description: "Configurez et maîtrisez les outils d'analytics pour vos réseaux sociaux.", Duration: "55 min", VideoURL: sampleVideoURL, TotalDuration: 3300},
		{ID: "video-smm-2-2", OfferingSlug: "social-media-management-avance", DayNumber: 2, ModuleIndex: 1, Title: "Construction de dashboards", Description: "Créez des tableaux de bord efficaces pour suivre vos KPIs.", Duration: "45 min", VideoURL: sampleVideoURL, TotalDuration: 2700},
		{ID: "video-md-1-1", OfferingSlug: "marketing-digital-fondamentaux", DayNumber: 1, ModuleIndex: 0, Title: "Panorama du marketing digital", Description: "Vue d'ensemble complète du marketing digital et de ses opportunités.", Duration: "40 min", VideoURL: sampleVideoURL, TotalDuration: 2400},
		{ID: "video-md-1-2", OfferingSlug: "marketing-digital-fondamentaux", DayNumber: 1, ModuleIndex: 1, Title: "Fondamentaux du SEO", Description: "Les bases du référencement naturel pour améliorer votre visibilité.", Duration: "50 min", VideoURL: sampleVideoURL, TotalDuration: 3000},
	}
}
