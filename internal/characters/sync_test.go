package characters

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/collectorsden/shelftrack/internal/characters/mock"
	"github.com/collectorsden/shelftrack/internal/database/models"
	"go.uber.org/mock/gomock"
)

func character(id int64, name string) *models.Character {
	return &models.Character{ID: id, Name: name}
}

func Test_Syncer_Sync(t *testing.T) {
	type args struct {
		itemID int64
		raw    string
	}
	tests := []struct {
		name    string
		args    args
		setup   func(characters *mock.MockCharacterStore, links *mock.MockLinkStore)
		want    []*models.ItemCharacter
		wantErr bool
	}{
		{
			name: "Promotes the first entry when none is marked",
			args: args{itemID: 7, raw: "Jazz, Prowl"},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Jazz").Return(character(1, "Jazz"), nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Prowl").Return(character(2, "Prowl"), nil)
				links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)
			},
			want: []*models.ItemCharacter{
				{ItemID: 7, CharacterID: 1, IsPrimary: true},
				{ItemID: 7, CharacterID: 2},
			},
		},
		{
			name: "First explicit primary wins and later markers are demoted",
			args: args{itemID: 7, raw: "Arcee | primary, Ultra Magnus | Primary ; Rodimus |   PRIMary"},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Arcee").Return(character(3, "Arcee"), nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Ultra Magnus").Return(character(4, "Ultra Magnus"), nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Rodimus").Return(character(5, "Rodimus"), nil)
				links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(3)
			},
			want: []*models.ItemCharacter{
				{ItemID: 7, CharacterID: 3, IsPrimary: true},
				{ItemID: 7, CharacterID: 4},
				{ItemID: 7, CharacterID: 5},
			},
		},
		{
			name: "Collapses duplicate names into one link",
			args: args{itemID: 7, raw: "Bumblebee, Bumblebee"},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Bumblebee").Return(character(6, "Bumblebee"), nil).Times(2)
				links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			want: []*models.ItemCharacter{
				{ItemID: 7, CharacterID: 6, IsPrimary: true},
			},
		},
		{
			name: "Duplicate with a primary marker claims the flag",
			args: args{itemID: 7, raw: "Jazz, Prowl, Jazz |primary"},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Jazz").Return(character(1, "Jazz"), nil).Times(2)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Prowl").Return(character(2, "Prowl"), nil)
				links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)
			},
			want: []*models.ItemCharacter{
				{ItemID: 7, CharacterID: 1, IsPrimary: true},
				{ItemID: 7, CharacterID: 2},
			},
		},
		{
			name: "Keeps custom modifiers in the role",
			args: args{itemID: 7, raw: "Soundwave | rider | damaged"},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Soundwave").Return(character(8, "Soundwave"), nil)
				links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			want: []*models.ItemCharacter{
				{ItemID: 7, CharacterID: 8, IsPrimary: true, Role: "rider |damaged"},
			},
		},
		{
			name: "Empty input clears the links",
			args: args{itemID: 7, raw: "   "},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil)
			},
			want: nil,
		},
		{
			name: "Skips names the store resolves to nil",
			args: args{itemID: 7, raw: "Ghost, Megatron"},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Ghost").Return(nil, nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Megatron").Return(character(9, "Megatron"), nil)
				links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
			},
			want: []*models.ItemCharacter{
				{ItemID: 7, CharacterID: 9, IsPrimary: true},
			},
		},
		{
			name: "Delete failure",
			args: args{itemID: 7, raw: "Jazz"},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(errors.New("db down"))
			},
			wantErr: true,
		},
		{
			name: "Resolve failure",
			args: args{itemID: 7, raw: "Jazz"},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Jazz").Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
		{
			name: "Create failure",
			args: args{itemID: 7, raw: "Jazz"},
			setup: func(characters *mock.MockCharacterStore, links *mock.MockLinkStore) {
				links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil)
				characters.EXPECT().GetOrCreate(gomock.Any(), "Jazz").Return(character(1, "Jazz"), nil)
				links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			characters := mock.NewMockCharacterStore(ctrl)
			links := mock.NewMockLinkStore(ctrl)
			tt.setup(characters, links)

			got, err := NewSyncer(characters, links).Sync(context.Background(), tt.args.itemID, tt.args.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("Syncer.Sync() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Syncer.Sync() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_Syncer_Sync_is_idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	characters := mock.NewMockCharacterStore(ctrl)
	links := mock.NewMockLinkStore(ctrl)

	links.EXPECT().DeleteByItem(gomock.Any(), int64(7)).Return(nil).Times(2)
	characters.EXPECT().GetOrCreate(gomock.Any(), "Jazz").Return(character(1, "Jazz"), nil).Times(2)
	characters.EXPECT().GetOrCreate(gomock.Any(), "Prowl").Return(character(2, "Prowl"), nil).Times(2)
	links.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(4)

	s := NewSyncer(characters, links)
	first, err := s.Sync(context.Background(), 7, "Jazz |primary, Prowl")
	if err != nil {
		t.Fatalf("Syncer.Sync() error = %v", err)
	}
	second, err := s.Sync(context.Background(), 7, "Jazz |primary, Prowl")
	if err != nil {
		t.Fatalf("Syncer.Sync() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Syncer.Sync() second run = %v, want %v", second, first)
	}
}
