package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"social-go/internal/config"
	"social-go/internal/logging"
	"social-go/internal/models"
	"social-go/internal/storage"
)

func usage() {
	fmt.Println("使用方法:")
	fmt.Println("  ./admin show-user <userID>      - show a user")
	fmt.Println("  ./admin list-friends <userID>   - list a user's friends")
	fmt.Println("  ./admin list-requests <userID>  - list friend requests sent or received by a user")
}

func main() {
	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	log := logging.New(cfg)

	db, err := storage.InitDB(cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	id, err := storage.StrToUint(os.Args[2])
	if err != nil || id == 0 {
		log.WithField("arg", os.Args[2]).Fatal("invalid user id")
	}
	ctx := context.Background()

	switch os.Args[1] {
	case "show-user":
		showUser(ctx, log, storage.NewGormUserRepository(db), id)
	case "list-friends":
		listFriends(ctx, log, storage.NewGormUserRepository(db), storage.NewGormFriendshipRepository(db), id)
	case "list-requests":
		listRequests(ctx, log, storage.NewGormFriendRequestRepository(db), id)
	default:
		usage()
		os.Exit(1)
	}
}

func showUser(ctx context.Context, log *logrus.Logger, users storage.UserRepository, userID uint) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Fatal("failed to load user")
	}

	fmt.Printf("用户 %d:\n", user.ID)
	fmt.Println("--------------------------------------")
	fmt.Printf("Name:       %s\n", user.FullName)
	fmt.Printf("Email:      %s\n", user.Email)
	fmt.Printf("Languages:  %s -> %s\n", user.NativeLanguage, user.LearningLanguage)
	fmt.Printf("Location:   %s\n", user.Location)
	fmt.Printf("Onboarded:  %v\n", user.IsOnboarded)
	fmt.Printf("Created:    %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
}

func listFriends(ctx context.Context, log *logrus.Logger, users storage.UserRepository, friendships storage.FriendshipRepository, userID uint) {
	ids, err := friendships.GetFriendIDs(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Fatal("failed to load friends")
	}
	profiles, err := users.GetProfilesByIDs(ctx, ids)
	if err != nil {
		log.WithError(err).Fatal("failed to load friend profiles")
	}

	fmt.Printf("用户 %d 的好友 (%d):\n", userID, len(profiles))
	fmt.Println("--------------------------------------")
	for i, p := range profiles {
		fmt.Printf("#%d ID: %d, %s (%s -> %s)\n", i+1, p.ID, p.FullName, p.NativeLanguage, p.LearningLanguage)
	}
}

func listRequests(ctx context.Context, log *logrus.Logger, requests storage.FriendRequestRepository, userID uint) {
	for _, status := range []models.FriendRequestStatus{models.FriendRequestStatusPending, models.FriendRequestStatusAccepted} {
		received, err := requests.ListByRecipient(ctx, userID, status)
		if err != nil {
			log.WithError(err).Fatal("failed to list received requests")
		}
		sent, err := requests.ListBySender(ctx, userID, status)
		if err != nil {
			log.WithError(err).Fatal("failed to list sent requests")
		}

		fmt.Printf("[%s] received %d, sent %d\n", status, len(received), len(sent))
		for _, r := range received {
			fmt.Printf("  <- #%d from %d at %s\n", r.ID, r.Counterpart(userID), r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		for _, r := range sent {
			fmt.Printf("  -> #%d to %d at %s\n", r.ID, r.Counterpart(userID), r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
	}
}
