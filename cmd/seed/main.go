// Command seed carga el catálogo Holmes-Rahe oficial y artículos de ejemplo.
// Con -reset vacía primero las tablas de catálogo y artículos.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"cesizen/internal/config"
	"cesizen/internal/db"
	"cesizen/internal/repository"
	"cesizen/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type seedEvent struct {
	Name        string
	Description string
	Points      int
	Category    string
}

// Escala Holmes-Rahe oficial, agrupada por categoría.
var seedEvents = []seedEvent{
	// Famille
	{"Décès du conjoint", "Perte de son époux/épouse", 100, "family"},
	{"Divorce", "Séparation légale définitive", 73, "family"},
	{"Séparation conjugale", "Séparation temporaire ou permanente du conjoint", 65, "family"},
	{"Décès d'un proche", "Mort d'un membre de la famille proche", 63, "family"},
	{"Mariage", "Union matrimoniale", 50, "family"},
	{"Réconciliation conjugale", "Retour avec le conjoint après séparation", 45, "family"},
	{"Ajout d'un nouveau membre dans la famille", "Naissance, adoption, emménagement d'un parent âgé", 39, "family"},
	{"Problèmes avec les beaux-parents", "Difficultés relationnelles avec la belle-famille", 29, "family"},
	{"Départ d'un membre de la famille", "Enfant qui quitte le foyer, divorce d'un proche", 29, "family"},

	// Personnel
	{"Emprisonnement", "Incarcération ou détention", 63, "personal"},
	{"Blessure ou maladie personnelle", "Problème de santé physique ou mentale important", 53, "personal"},
	{"Changement dans les habitudes personnelles", "Modification de l'apparence, du style de vie, des routines", 24, "personal"},
	{"Changement d'activités religieuses", "Modification de la pratique religieuse", 19, "personal"},
	{"Changement d'activités sociales", "Modification des loisirs, clubs, activités de groupe", 18, "personal"},
	{"Changement dans les habitudes de sommeil", "Modification significative des heures de sommeil", 16, "personal"},
	{"Changement dans les habitudes alimentaires", "Modification du régime alimentaire ou des horaires de repas", 15, "personal"},

	// Travail
	{"Licenciement", "Perte d'emploi involontaire", 47, "work"},
	{"Retraite", "Cessation d'activité professionnelle", 45, "work"},
	{"Changement de responsabilités au travail", "Promotion, rétrogradation, changement de poste", 29, "work"},
	{"Début ou fin d'études", "Entrée à l'université, obtention d'un diplôme", 26, "work"},
	{"Problèmes avec le patron", "Difficultés relationnelles avec la hiérarchie", 23, "work"},
	{"Changement des conditions de travail", "Horaires, lieu de travail, collègues, etc.", 20, "work"},

	// Finances
	{"Difficultés financières majeures", "Problèmes d'argent importants, faillite", 38, "financial"},
	{"Changement de situation financière", "Amélioration ou détérioration significative des revenus", 38, "financial"},
	{"Prêt hypothécaire important", "Achat d'une maison, gros emprunt immobilier", 31, "financial"},
	{"Saisie d'un bien", "Perte d'un bien par saisie légale", 30, "financial"},
	{"Prêt personnel important", "Emprunt significatif pour voiture, études, etc.", 17, "financial"},

	// Santé
	{"Grossesse", "Attente d'un enfant", 40, "health"},
	{"Problèmes sexuels", "Difficultés dans la vie intime", 39, "health"},
	{"Révision des habitudes personnelles", "Remise en question de son mode de vie", 24, "health"},

	// Social
	{"Réalisation personnelle remarquable", "Succès important, reconnaissance publique", 28, "social"},
	{"Déménagement", "Changement de domicile", 20, "social"},
	{"Changement d'école", "Nouveau établissement scolaire", 20, "social"},
	{"Vacances", "Période de congés, voyage de détente", 13, "social"},
	{"Fêtes de fin d'année", "Période des fêtes (Noël, Nouvel An)", 12, "social"},
	{"Problèmes avec la loi", "Infractions mineures, contraventions, procès", 11, "social"},
}

var seedArticles = []service.ArticleInput{
	{
		Title:       "Gérer son stress pendant les examens",
		Content:     "Les examens peuvent être une source importante de stress pour les étudiants. Planifiez vos révisions à l'avance, faites des pauses régulières, dormez suffisamment et pratiquez la respiration profonde quelques minutes chaque jour. Une alimentation équilibrée est essentielle pour maintenir votre énergie et votre concentration.",
		Excerpt:     "Découvrez des techniques efficaces pour rester zen pendant la période d'examens et optimiser vos révisions.",
		Author:      "Dr. Sarah Martin",
		Category:    "conseil",
		IsPublished: true,
		IsFeatured:  true,
		Tags:        []string{"stress", "examens", "relaxation", "conseils"},
	},
	{
		Title:       "Nouvelle session de méditation guidée",
		Content:     "Nous sommes ravis d'annoncer le lancement de nos nouvelles sessions de méditation guidée ! Tous les mercredis de 18h à 19h, salle de détente du campus. Au programme : techniques de respiration, méditation de pleine conscience, relaxation progressive et gestion du stress. L'inscription est gratuite pour tous les étudiants CESI, places limitées à 20 participants.",
		Excerpt:     "Rejoignez-nous pour une session de méditation guidée chaque mercredi. Inscription gratuite pour tous les étudiants.",
		Author:      "Équipe CESI-ZEN",
		Category:    "evenement",
		IsPublished: true,
		IsFeatured:  true,
		Tags:        []string{"méditation", "événement", "bien-être", "campus"},
	},
	{
		Title:       "Les bienfaits de la marche sur la santé mentale",
		Content:     "La marche est l'une des activités les plus simples et les plus bénéfiques pour notre santé mentale : diminution du cortisol, libération d'endorphines naturelles, meilleure concentration. Commencez petit avec 10-15 minutes par jour, choisissez un environnement agréable et marchez en pleine conscience. Marchez jusqu'au campus quand c'est possible et prenez les escaliers plutôt que l'ascenseur.",
		Excerpt:     "Découvrez comment la marche peut améliorer votre bien-être mental et comment l'intégrer facilement dans votre quotidien d'étudiant.",
		Author:      "Dr. Pierre Leroy",
		Category:    "sante",
		IsPublished: true,
		Tags:        []string{"marche", "santé mentale", "exercice", "bien-être"},
	},
	{
		Title:       "Lancement de l'application CESI-ZEN",
		Content:     "Nous sommes fiers d'annoncer le lancement officiel de l'application CESI-ZEN, la plateforme dédiée au bien-être des étudiants CESI. Elle propose un diagnostic de stress basé sur l'échelle Holmes-Rahe, des exercices de relaxation, des conseils personnalisés et un suivi de votre progression. Créez votre compte, complétez votre profil et passez le test Holmes-Rahe pour commencer.",
		Excerpt:     "Découvrez la nouvelle plateforme CESI-ZEN dédiée au bien-être des étudiants avec des outils innovants de gestion du stress.",
		Author:      "Équipe CESI-ZEN",
		Category:    "actualite",
		IsPublished: true,
		Tags:        []string{"lancement", "application", "bien-être", "étudiants"},
	},
}

func main() {
	reset := flag.Bool("reset", false, "vaciar catálogo y artículos antes de insertar")
	flag.Parse()

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	if *reset {
		if _, err := pool.Exec(ctx, `DELETE FROM stress_events`); err != nil {
			logger.Fatal("reset stress_events", zap.Error(err))
		}
		if _, err := pool.Exec(ctx, `DELETE FROM articles`); err != nil {
			logger.Fatal("reset articles", zap.Error(err))
		}
		logger.Info("existing catalog and articles removed")
	}

	eventRepo := repository.NewPgStressEventRepository(pool)
	resultRepo := repository.NewPgDiagnosticResultRepository(pool)
	articleRepo := repository.NewPgArticleRepository(pool)
	userRepo := repository.NewPgUserRepository(pool)

	diagSvc := service.NewDiagnosticService(logger, eventRepo, resultRepo, userRepo)
	articleSvc := service.NewArticleService(logger, articleRepo)
	userSvc := service.NewUserService(logger, userRepo, cfg.BcryptCost)

	existing, err := diagSvc.AllEvents(ctx)
	if err != nil {
		logger.Fatal("load catalog", zap.Error(err))
	}
	if len(existing) > 0 {
		logger.Info("catalog already seeded, skipping events", zap.Int("count", len(existing)))
	} else {
		for _, ev := range seedEvents {
			if _, err := diagSvc.CreateEvent(ctx, service.EventInput{
				Name:        ev.Name,
				Description: ev.Description,
				Points:      ev.Points,
				Category:    ev.Category,
				IsActive:    true,
			}); err != nil {
				logger.Fatal("seed event", zap.Error(err), zap.String("name", ev.Name))
			}
		}
		logger.Info("stress events seeded", zap.Int("count", len(seedEvents)))
	}

	articles, _, err := articleSvc.ListAdmin(ctx, repository.ArticleFilter{Page: 1, Limit: 1})
	if err != nil {
		logger.Fatal("load articles", zap.Error(err))
	}
	if len(articles) > 0 {
		logger.Info("articles already seeded, skipping")
	} else {
		for _, input := range seedArticles {
			if _, err := articleSvc.Create(ctx, input); err != nil {
				logger.Fatal("seed article", zap.Error(err), zap.String("title", input.Title))
			}
		}
		logger.Info("articles seeded", zap.Int("count", len(seedArticles)))
	}

	// Cuenta admin opcional vía entorno.
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail != "" && adminPassword != "" {
		_, err := userSvc.Register(ctx, service.CreateUserInput{
			Email:     adminEmail,
			Password:  adminPassword,
			FirstName: "Admin",
			LastName:  "CESI",
			Role:      "admin",
		})
		switch {
		case err == nil:
			logger.Info("admin account created", zap.String("email", adminEmail))
		case errors.Is(err, service.ErrEmailTaken):
			logger.Info("admin account already exists", zap.String("email", adminEmail))
		default:
			logger.Fatal("create admin", zap.Error(err))
		}
	}

	logger.Info("seed finished")
}
