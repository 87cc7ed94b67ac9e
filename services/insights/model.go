package insights

type Channel struct {
	ID                    string
	Title                 string
	Description           string `json:",omitempty"`
	SubscriberCount       uint64
	HiddenSubscriberCount bool
	ViewCount             uint64
	VideoCount            uint64
}

type ChannelsResponse struct {
	Channels []Channel
}
