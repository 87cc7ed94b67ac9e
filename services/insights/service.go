package insights

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/MarcGrol/insightsbackend/lib/myerrors"
	"github.com/MarcGrol/insightsbackend/lib/mylog"
)

type Config struct {
	YoutubeEndpoint string `env:"YOUTUBE_API_ENDPOINT" validate:"omitempty,http_url"`
}

type service struct {
	config Config
	logger mylog.Logger
}

func newService(config Config) *service {
	return &service{
		config: config,
		logger: mylog.New("insights"),
	}
}

// listMyChannels fetches the channels owned by the user the http client is authenticated for.
func (s *service) listMyChannels(c context.Context, httpClient *http.Client) ([]Channel, error) {
	opts := []option.ClientOption{
		option.WithHTTPClient(httpClient),
	}
	if s.config.YoutubeEndpoint != "" {
		opts = append(opts, option.WithEndpoint(s.config.YoutubeEndpoint))
	}

	youtubeService, err := youtube.NewService(c, opts...)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error creating youtube client: %s", err))
	}

	resp, err := youtubeService.Channels.List([]string{"snippet", "statistics"}).Mine(true).Context(c).Do()
	if err != nil {
		return nil, toError(err)
	}

	channels := make([]Channel, 0, len(resp.Items))
	for _, item := range resp.Items {
		channels = append(channels, toChannel(item))
	}

	return channels, nil
}

func toChannel(item *youtube.Channel) Channel {
	channel := Channel{
		ID: item.Id,
	}
	if item.Snippet != nil {
		channel.Title = item.Snippet.Title
		channel.Description = item.Snippet.Description
	}
	if item.Statistics != nil {
		channel.SubscriberCount = item.Statistics.SubscriberCount
		channel.HiddenSubscriberCount = item.Statistics.HiddenSubscriberCount
		channel.ViewCount = item.Statistics.ViewCount
		channel.VideoCount = item.Statistics.VideoCount
	}
	return channel
}

func toError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return myerrors.NewUnauthorizedError(fmt.Errorf("youtube rejected credential: %s", apiErr.Message))
		case http.StatusForbidden:
			return myerrors.NewAuthenticationError(fmt.Errorf("youtube denied access: %s", apiErr.Message))
		}
	}
	return myerrors.NewBadGatewayError(fmt.Errorf("error fetching channels: %s", err))
}
