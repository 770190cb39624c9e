package pages

const (
	appCSS     = `.container{max-width:110ch;margin:auto;padding:0 20px;display:flex}.page{width:100%}`
	navCSS     = `.sidebar{display:flex;flex-direction:column;margin-top:4vw}`
	navLinkCSS = `.link a{font-weight:600;font-size:18px;text-decoration:none !important;color:#3c3c3c}.link{margin:2px 0}`
	homeCSS    = `.home{margin-left:30px;margin-top:4vw}`
	blogCSS    = `.blog{width:100%;padding:0 20px;margin-left:30px;margin-top:4vw}.posts{display:flex;flex-wrap:wrap;margin-top:2vw}`
	listCSS    = `.list h3{font-size:1.5em;font-weight:700;font-variant:small-caps;margin-top:4px;line-height:1.125}.list li{line-height:1.55}.list a,.list p{color:#333}.list a:hover{color:#888}`
)
