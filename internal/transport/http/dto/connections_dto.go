package dto

type ChatListResponse struct {
	Chats []ProfileCardResponse `json:"chats"`
}

type AdmirersResponse struct {
	Admirers []ProfileCardResponse `json:"admirers"`
}
